package contracts

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ErrInvalidCustomer = errors.New("invalid customer details")

// Customer holds the shipping fields collected by the checkout form.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
}

var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips any markup from the free-text fields. The result is plain
// text, so entities escaped by the policy are decoded again.
func (c Customer) Sanitize() Customer {
	clean := func(s string) string {
		return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
	}
	return Customer{
		Name:    clean(c.Name),
		Email:   clean(c.Email),
		Phone:   clean(c.Phone),
		Address: clean(c.Address),
		City:    clean(c.City),
		State:   clean(c.State),
	}
}

func (c Customer) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidCustomer, strings.Join(missing, ", "))
	}
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("%w: email %q is not an address", ErrInvalidCustomer, c.Email)
	}
	return nil
}
