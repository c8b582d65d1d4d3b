// Package policy decides whether a caller may perform an operation.
//
// Ownership of orders is not checked here: the order store only ever sees
// the caller's own orders, so a foreign order is reported as not found.
package policy

import (
	"order_system/internal/apperr"
	"order_system/internal/domain"
)

// Operation names an action guarded by the policy.
type Operation string

const (
	AccountList   Operation = "account.list"
	AccountRead   Operation = "account.read"
	AccountCreate Operation = "account.create"
	AccountUpdate Operation = "account.update"
	AccountDelete Operation = "account.delete"

	OrderList   Operation = "order.list"
	OrderCreate Operation = "order.create"
	OrderRead   Operation = "order.read"
	OrderUpdate Operation = "order.update"
	OrderDelete Operation = "order.delete"

	AggregateEmails        Operation = "aggregate.emails"
	AggregateOrdersByEmail Operation = "aggregate.orders_by_email"
)

var adminOnly = map[Operation]bool{
	AccountCreate:          true,
	AccountUpdate:          true,
	AccountDelete:          true,
	AggregateEmails:        true,
	AggregateOrdersByEmail: true,
}

// RequiresAdmin reports whether op is restricted to admins.
func RequiresAdmin(op Operation) bool {
	return adminOnly[op]
}

// Authorize returns nil when caller may perform op.
// A nil caller is unauthenticated; a non-admin caller on an admin operation is forbidden.
func Authorize(caller *domain.Account, op Operation) error {
	if caller == nil {
		return apperr.Unauthenticated("authentication credentials were not provided")
	}
	if adminOnly[op] && !caller.IsAdmin {
		return apperr.Forbidden("you do not have permission to perform this action")
	}
	return nil
}
