package forms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/coldfrontcalls/cart-service-go/internal/contracts"
	"github.com/coldfrontcalls/cart-service-go/internal/middleware"
)

const DefaultFormName = "checkout"

// Client posts orders to the form backend that mails them to the shop, the
// same way the storefront's checkout form does.
type Client struct {
	FormName string
	Endpoint *url.URL
	HTTP     *http.Client
}

func NewClient(endpoint, formName string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid form endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid form endpoint %q: scheme must be http or https", endpoint)
	}
	if formName == "" {
		formName = DefaultFormName
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{FormName: formName, Endpoint: u, HTTP: httpClient}, nil
}

// Fields renders s as the form submission.
func (c *Client) Fields(s contracts.OrderSummary) url.Values {
	v := url.Values{}
	v.Set("form-name", c.FormName)
	v.Set("name", s.Customer.Name)
	v.Set("email", s.Customer.Email)
	v.Set("phone", s.Customer.Phone)
	v.Set("address", s.Customer.Address)
	v.Set("city", s.Customer.City)
	v.Set("state", s.Customer.State)
	v.Set("order_details", s.Text())
	v.Set("cart-items", s.CartItemsField())
	v.Set("total-amount", s.TotalField())
	v.Set("order-id", s.OrderID)
	return v
}

// Submit satisfies checkout.Submitter. Any non-2xx answer is an error.
func (c *Client) Submit(ctx context.Context, s contracts.OrderSummary) error {
	body := strings.NewReader(c.Fields(s).Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/json")

	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("post %s form: %w", c.FormName, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post %s form: unexpected status %d", c.FormName, resp.StatusCode)
	}
	return nil
}
