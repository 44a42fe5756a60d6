package checkout

import (
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

type Statuses struct {
	IsLoading  bool `json:"is_loading"`
	IsUpdating bool `json:"is_updating"`
}

type Errors struct {
	LoadError error `json:"load_error"`
}

// State is the checkout slice. Data is nil until the checkout has been loaded.
type State struct {
	Data     *models.Checkout `json:"data"`
	Statuses Statuses         `json:"statuses"`
	Errors   Errors           `json:"errors"`
}

func InitialState() State {
	return State{}
}

// Reduce applies the load triad. Updates produced by other slices' operations are
// folded in with Replace.
func Reduce(prev State, action store.Action) State {
	switch action.Type {
	case LoadCheckoutRequested:
		prev.Statuses.IsLoading = true
		prev.Errors.LoadError = nil

	case LoadCheckoutSucceeded:
		prev = Replace(prev, action.Payload)
		prev.Statuses.IsLoading = false
		prev.Errors.LoadError = nil

	case LoadCheckoutFailed:
		prev.Statuses.IsLoading = false
		prev.Errors.LoadError = action.Error
	}
	return prev
}

// Replace swaps Data for the checkout carried by payload, if any.
func Replace(prev State, payload any) State {
	c, ok := payload.(models.Checkout)
	if !ok {
		return prev
	}
	prev.Data = &c
	return prev
}

// SetUpdating marks a mutation of the checkout as in flight or settled.
func SetUpdating(prev State, updating bool) State {
	prev.Statuses.IsUpdating = updating
	return prev
}
