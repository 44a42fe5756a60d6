// Package customer holds the customer slice of the checkout state.
package customer

import (
	"context"
	"strings"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/checkout"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/interfaces"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

const (
	SignInCustomerRequested store.ActionType = "SIGN_IN_CUSTOMER_REQUESTED"
	SignInCustomerSucceeded store.ActionType = "SIGN_IN_CUSTOMER_SUCCEEDED"
	SignInCustomerFailed    store.ActionType = "SIGN_IN_CUSTOMER_FAILED"

	SignOutCustomerRequested store.ActionType = "SIGN_OUT_CUSTOMER_REQUESTED"
	SignOutCustomerSucceeded store.ActionType = "SIGN_OUT_CUSTOMER_SUCCEEDED"
	SignOutCustomerFailed    store.ActionType = "SIGN_OUT_CUSTOMER_FAILED"

	// Remote sign-out ends the session held by a wallet provider.
	SignOutRemoteRequested store.ActionType = "SIGN_OUT_REMOTE_CUSTOMER_REQUESTED"
	SignOutRemoteSucceeded store.ActionType = "SIGN_OUT_REMOTE_CUSTOMER_SUCCEEDED"
	SignOutRemoteFailed    store.ActionType = "SIGN_OUT_REMOTE_CUSTOMER_FAILED"
)

// MetaProviderID is the action metadata key carrying the wallet provider id.
const MetaProviderID = "provider_id"

var (
	SignInTriad        = store.Triad{Requested: SignInCustomerRequested, Succeeded: SignInCustomerSucceeded, Failed: SignInCustomerFailed}
	SignOutTriad       = store.Triad{Requested: SignOutCustomerRequested, Succeeded: SignOutCustomerSucceeded, Failed: SignOutCustomerFailed}
	SignOutRemoteTriad = store.Triad{Requested: SignOutRemoteRequested, Succeeded: SignOutRemoteSucceeded, Failed: SignOutRemoteFailed}
)

type Statuses struct {
	IsSigningIn  bool `json:"is_signing_in"`
	IsSigningOut bool `json:"is_signing_out"`
}

type Errors struct {
	SignInError  error `json:"sign_in_error"`
	SignOutError error `json:"sign_out_error"`
}

type State struct {
	Data     models.Customer `json:"data"`
	Statuses Statuses        `json:"statuses"`
	Errors   Errors          `json:"errors"`
}

func InitialState() State {
	return State{}
}

func Reduce(prev State, action store.Action) State {
	switch action.Type {
	case SignInCustomerRequested:
		prev.Statuses.IsSigningIn = true
		prev.Errors.SignInError = nil

	case SignInCustomerSucceeded:
		if c, ok := action.Payload.(models.Customer); ok {
			prev.Data = c
		}
		prev.Statuses.IsSigningIn = false
		prev.Errors.SignInError = nil

	case SignInCustomerFailed:
		prev.Statuses.IsSigningIn = false
		prev.Errors.SignInError = action.Error

	case SignOutCustomerRequested, SignOutRemoteRequested:
		prev.Statuses.IsSigningOut = true
		prev.Errors.SignOutError = nil

	case SignOutCustomerSucceeded, SignOutRemoteSucceeded:
		if c, ok := action.Payload.(models.Customer); ok {
			prev.Data = c
		}
		prev.Statuses.IsSigningOut = false
		prev.Errors.SignOutError = nil

	case SignOutCustomerFailed, SignOutRemoteFailed:
		prev.Statuses.IsSigningOut = false
		prev.Errors.SignOutError = action.Error

	case checkout.LoadCheckoutSucceeded:
		if c, ok := action.Payload.(models.Checkout); ok {
			prev.Data = c.Customer
		}
	}
	return prev
}

type ActionCreator struct {
	sender interfaces.CheckoutRequestSender
}

func NewActionCreator(sender interfaces.CheckoutRequestSender) *ActionCreator {
	return &ActionCreator{sender: sender}
}

// SignIn signs the shopper in with their store credentials.
func (c *ActionCreator) SignIn(credentials models.Credentials) store.Thunk {
	if strings.TrimSpace(credentials.Email) == "" || credentials.Password == "" {
		return checkout.Reject(errs.InvalidArgument(`Unable to sign in because "email" or "password" is not provided.`))
	}
	return SignInTriad.Run(nil, func(ctx context.Context) (any, error) {
		return c.sender.SignInCustomer(ctx, credentials)
	})
}

func (c *ActionCreator) SignOut() store.Thunk {
	return SignOutTriad.Run(nil, func(ctx context.Context) (any, error) {
		return c.sender.SignOutCustomer(ctx)
	})
}

// SignOutRemote ends the customer session held by the wallet provider.
func (c *ActionCreator) SignOutRemote(providerID string) store.Thunk {
	if strings.TrimSpace(providerID) == "" {
		return checkout.Reject(errs.InvalidArgument(`Unable to sign out because "providerId" is not provided.`))
	}
	return SignOutRemoteTriad.Run(map[string]string{MetaProviderID: providerID}, func(ctx context.Context) (any, error) {
		return c.sender.SignOutRemote(ctx, providerID)
	})
}
