package orderapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// ID accepts identifiers encoded either as JSON strings or numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Order mirrors an element of the listing payload.
type Order struct {
	ID            ID          `json:"id"`
	OrderNumber   *string     `json:"orderNumber,omitempty"`
	CreatedAt     *time.Time  `json:"createdAt,omitempty"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus,omitempty"`
	CustomerName  *string     `json:"customerName,omitempty"`
	TotalAmount   *float64    `json:"totalAmount,omitempty"`
	OrderItems    []OrderItem `json:"orderItems,omitempty"`
}

// OrderItem carries exactly one of Item, ItemVariation or ModifierOption.
type OrderItem struct {
	Quantity       int          `json:"quantity"`
	Item           *ProductInfo `json:"item,omitempty"`
	ItemVariation  *ProductInfo `json:"itemVariation,omitempty"`
	ModifierOption *ProductInfo `json:"modifierOption,omitempty"`
}

type ProductInfo struct {
	ID    ID      `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ListOrdersResponse is the envelope of GET /api/order.
type ListOrdersResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Result  struct {
		Data []Order `json:"data"`
	} `json:"result"`
}

// UpdateStatusRequest is the body of PUT /api/order/status/{orderId}.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatusResponse is the envelope returned by the status endpoint.
type UpdateStatusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}
