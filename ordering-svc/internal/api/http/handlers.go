package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"restaurant-ordering/ordering-svc/internal/domain"
	"restaurant-ordering/ordering-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Uploader turns a multipart request into the URL of the stored image.
// w is only used to cap the request body.
type Uploader interface {
	FromRequest(w http.ResponseWriter, r *http.Request) (string, error)
}

type Handler struct {
	Orders        service.OrderServiceInterface
	Dishes        service.DishServiceInterface
	Ratings       service.RatingServiceInterface
	Chefs         service.ChefServiceInterface
	DishUploads   Uploader
	RatingUploads Uploader
	Log           logrus.FieldLogger
	Production    bool
}

func (h *Handler) logger() logrus.FieldLogger {
	if h.Log == nil {
		return logrus.StandardLogger()
	}
	return h.Log
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/orders", h.getOrders).Methods("GET")
	r.HandleFunc("/api/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}", h.deleteOrder).Methods("DELETE")
	r.HandleFunc("/api/orders/{id}/status", h.updateOrderStatus).Methods("PATCH")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")

	r.HandleFunc("/api/dishes", h.getDishes).Methods("GET")
	r.HandleFunc("/api/dishes", h.createDish).Methods("POST")
	r.HandleFunc("/api/dishes/upload", h.uploadDishImage).Methods("POST")
	if !h.Production {
		r.HandleFunc("/api/dishes/init", h.seedDishes).Methods("POST")
	}
	r.HandleFunc("/api/dishes/category/{category}", h.getDishesByCategory).Methods("GET")
	r.HandleFunc("/api/dishes/{id}", h.deleteDish).Methods("DELETE")

	r.HandleFunc("/api/ratings", h.createRating).Methods("POST")
	r.HandleFunc("/api/ratings/upload", h.uploadRatingImage).Methods("POST")

	r.HandleFunc("/api/chef/info", h.getChefInfo).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "ordering-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.Orders.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, grouped)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		h.writeError(w, r, badJSON(err))
		return
	}
	if err := h.Orders.Create(r.Context(), &order); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, order)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, badJSON(err))
		return
	}
	order, err := h.Orders.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Orders.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "order cancelled", "id": id})
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.Orders.QRCode(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		requestLogger(r, h.logger()).WithError(err).Debug("failed to write qr code")
	}
}

func (h *Handler) getDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.Dishes.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dishes)
}

func (h *Handler) getDishesByCategory(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.Dishes.ListByCategory(r.Context(), mux.Vars(r)["category"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dishes)
}

func (h *Handler) createDish(w http.ResponseWriter, r *http.Request) {
	var dish domain.Dish
	if err := json.NewDecoder(r.Body).Decode(&dish); err != nil {
		h.writeError(w, r, badJSON(err))
		return
	}
	if err := h.Dishes.Create(r.Context(), &dish); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dish)
}

func (h *Handler) seedDishes(w http.ResponseWriter, r *http.Request) {
	count, err := h.Dishes.Seed(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{"message": "sample dishes loaded", "count": count})
}

func (h *Handler) deleteDish(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, fmt.Errorf("dish id must be a number: %w", domain.ErrValidation))
		return
	}
	if err := h.Dishes.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"message": "dish deleted", "id": id})
}

func (h *Handler) uploadDishImage(w http.ResponseWriter, r *http.Request) {
	url, err := h.DishUploads.FromRequest(connWriter(w, r), r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "url": url})
}

func (h *Handler) createRating(w http.ResponseWriter, r *http.Request) {
	var rating domain.Rating
	if err := json.NewDecoder(r.Body).Decode(&rating); err != nil {
		h.writeError(w, r, badJSON(err))
		return
	}
	if err := h.Ratings.Submit(r.Context(), &rating); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, rating)
}

func (h *Handler) uploadRatingImage(w http.ResponseWriter, r *http.Request) {
	url, err := h.RatingUploads.FromRequest(connWriter(w, r), r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"url": url})
}

type chefView struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Avatar string  `json:"avatar"`
	Rating float64 `json:"rating"`
}

func (h *Handler) getChefInfo(w http.ResponseWriter, r *http.Request) {
	chef, err := h.Chefs.Info(r.Context(), r.URL.Query().Get("orderId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"chef": chefView{
			ID:     chef.ID,
			Name:   chef.Name,
			Avatar: chef.Avatar,
			Rating: chef.Rating,
		},
	})
}
