package strategy

import (
	"fmt"
	"maps"
	"strings"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

// MetaMethodID is the action metadata key carrying the strategy's method id.
const MetaMethodID = "method_id"

// Types holds the action tags of one strategy domain.
type Types struct {
	Initialize   store.Triad
	Execute      store.Triad
	Deinitialize store.Triad
}

// TypesFor returns the action tags of domain, e.g. CUSTOMER_STRATEGY_INITIALIZE_REQUESTED.
func TypesFor(domain Domain) Types {
	triad := func(op string) store.Triad {
		prefix := fmt.Sprintf("%s_STRATEGY_%s", strings.ToUpper(string(domain)), op)
		return store.Triad{
			Requested: store.ActionType(prefix + "_REQUESTED"),
			Succeeded: store.ActionType(prefix + "_SUCCEEDED"),
			Failed:    store.ActionType(prefix + "_FAILED"),
		}
	}
	return Types{
		Initialize:   triad("INITIALIZE"),
		Execute:      triad("EXECUTE"),
		Deinitialize: triad("DEINITIALIZE"),
	}
}

var (
	CustomerTypes = TypesFor(DomainCustomer)
	PaymentTypes  = TypesFor(DomainPayment)
)

type MethodData struct {
	IsInitialized bool `json:"is_initialized"`
}

type MethodStatuses struct {
	IsInitializing   bool `json:"is_initializing"`
	IsExecuting      bool `json:"is_executing"`
	IsDeinitializing bool `json:"is_deinitializing"`
}

type MethodErrors struct {
	InitializeError   error `json:"initialize_error"`
	ExecuteError      error `json:"execute_error"`
	DeinitializeError error `json:"deinitialize_error"`
}

// State tracks each method's strategy lifecycle, keyed by method id. The maps are
// copied on write so earlier snapshots never change.
type State struct {
	Data     map[string]MethodData     `json:"data"`
	Statuses map[string]MethodStatuses `json:"statuses"`
	Errors   map[string]MethodErrors   `json:"errors"`
}

func InitialState() State {
	return State{
		Data:     map[string]MethodData{},
		Statuses: map[string]MethodStatuses{},
		Errors:   map[string]MethodErrors{},
	}
}

func (s State) IsInitialized(methodID string) bool { return s.Data[methodID].IsInitialized }

func (s State) IsInitializing(methodID string) bool { return s.Statuses[methodID].IsInitializing }

func (s State) IsExecuting(methodID string) bool { return s.Statuses[methodID].IsExecuting }

func (s State) IsDeinitializing(methodID string) bool { return s.Statuses[methodID].IsDeinitializing }

// Reducer returns the reducer of the strategy slice for domain. Actions without a
// method id are ignored.
func Reducer(domain Domain) store.Reducer[State] {
	types := TypesFor(domain)
	return func(prev State, action store.Action) State {
		id := action.Meta[MetaMethodID]
		if id == "" {
			return prev
		}
		switch action.Type {
		case types.Initialize.Requested:
			return prev.update(id, nil, func(st *MethodStatuses, e *MethodErrors) {
				st.IsInitializing = true
				e.InitializeError = nil
			})
		case types.Initialize.Succeeded:
			return prev.update(id, &MethodData{IsInitialized: true}, func(st *MethodStatuses, e *MethodErrors) {
				st.IsInitializing = false
				e.InitializeError = nil
			})
		case types.Initialize.Failed:
			return prev.update(id, nil, func(st *MethodStatuses, e *MethodErrors) {
				st.IsInitializing = false
				e.InitializeError = action.Error
			})
		case types.Execute.Requested:
			return prev.update(id, nil, func(st *MethodStatuses, e *MethodErrors) {
				st.IsExecuting = true
				e.ExecuteError = nil
			})
		case types.Execute.Succeeded:
			return prev.update(id, nil, func(st *MethodStatuses, e *MethodErrors) {
				st.IsExecuting = false
				e.ExecuteError = nil
			})
		case types.Execute.Failed:
			return prev.update(id, nil, func(st *MethodStatuses, e *MethodErrors) {
				st.IsExecuting = false
				e.ExecuteError = action.Error
			})
		case types.Deinitialize.Requested:
			return prev.update(id, nil, func(st *MethodStatuses, e *MethodErrors) {
				st.IsDeinitializing = true
				e.DeinitializeError = nil
			})
		case types.Deinitialize.Succeeded:
			return prev.update(id, &MethodData{IsInitialized: false}, func(st *MethodStatuses, e *MethodErrors) {
				st.IsDeinitializing = false
				e.DeinitializeError = nil
			})
		case types.Deinitialize.Failed:
			return prev.update(id, nil, func(st *MethodStatuses, e *MethodErrors) {
				st.IsDeinitializing = false
				e.DeinitializeError = action.Error
			})
		}
		return prev
	}
}

func (s State) update(id string, data *MethodData, fn func(*MethodStatuses, *MethodErrors)) State {
	next := State{
		Data:     s.Data,
		Statuses: cloneMap(s.Statuses),
		Errors:   cloneMap(s.Errors),
	}
	if data != nil {
		next.Data = cloneMap(s.Data)
		next.Data[id] = *data
	}
	st := next.Statuses[id]
	e := next.Errors[id]
	fn(&st, &e)
	next.Statuses[id] = st
	next.Errors[id] = e
	return next
}

func cloneMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return maps.Clone(m)
}
