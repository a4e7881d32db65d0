package coinbase

// Wire types for the Advanced Trade REST API, reduced to the fields the
// session consumes.

type accountsResponse struct {
	Accounts []struct {
		Currency         string `json:"currency"`
		AvailableBalance struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"available_balance"`
	} `json:"accounts"`
}

type productResponse struct {
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
}

type orderConfiguration struct {
	MarketIOC marketIOC `json:"market_market_ioc"`
}

type marketIOC struct {
	QuoteSize string `json:"quote_size,omitempty"`
	BaseSize  string `json:"base_size,omitempty"`
}

type createOrderRequest struct {
	ClientOrderID      string             `json:"client_order_id"`
	ProductID          string             `json:"product_id"`
	Side               string             `json:"side"`
	OrderConfiguration orderConfiguration `json:"order_configuration"`
}

type createOrderResponse struct {
	Success         bool   `json:"success"`
	OrderID         string `json:"order_id"`
	OrderStatus     string `json:"order_status"`
	SuccessResponse struct {
		OrderID string `json:"order_id"`
	} `json:"success_response"`
	ErrorResponse struct {
		Error        string `json:"error"`
		Message      string `json:"message"`
		ErrorDetails string `json:"error_details"`
	} `json:"error_response"`
	Fills []struct {
		Size  string `json:"size"`
		Price string `json:"price"`
	} `json:"fills"`
}
