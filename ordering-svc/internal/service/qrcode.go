package service

import (
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

// DefaultQRGenerator encodes the rating page link for an order as a PNG.
type DefaultQRGenerator struct {
	BaseURL string
	Size    int
}

func (g DefaultQRGenerator) Link(orderID string) string {
	return strings.TrimRight(g.BaseURL, "/") + "/rating.html?orderId=" + url.QueryEscape(orderID)
}

func (g DefaultQRGenerator) Generate(orderID string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(g.Link(orderID), qrcode.Medium, size)
}
