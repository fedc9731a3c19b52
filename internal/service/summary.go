package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/linemk/airbatu-shop/internal/domain/models"
)

const orderCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// OrderCodeLength - длина короткого кода заказа, например "S18U"
const OrderCodeLength = 4

// NewOrderCode берёт случайные байты из UUID v4
func NewOrderCode() string {
	id := uuid.New()
	code := make([]byte, OrderCodeLength)
	for i := range code {
		code[i] = orderCodeAlphabet[int(id[i])%len(orderCodeAlphabet)]
	}
	return string(code)
}

// BuildSummary собирает текст заказа для отправки в WhatsApp
func BuildSummary(shopName string, order *models.Order) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "New Order for %s!\n\n", shopName)
	fmt.Fprintf(&sb, "Order ID: #%s\n", order.ID)
	fmt.Fprintf(&sb, "Customer Name: %s\n", order.CustomerName)
	if order.CustomerPhone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", order.CustomerPhone)
	}
	fmt.Fprintf(&sb, "Pickup Time: %s\n\n", order.PickupSlot)
	sb.WriteString("Items:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&sb, "- %dx %s\n", item.Quantity, item.Name)
	}
	fmt.Fprintf(&sb, "\nTotal Price: $%s", order.Total.StringFixed(2))
	return sb.String()
}

// uriComponent приводит url.QueryEscape к набору encodeURIComponent из браузера
var uriComponent = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// HandoffURL - ссылка wa.me с заполненным текстом, закодированным как encodeURIComponent.
func HandoffURL(number, summary string) string {
	text := uriComponent.Replace(url.QueryEscape(summary))
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, text)
}
