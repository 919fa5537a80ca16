// Package entity defines the core business entities for the domain layer.
package entity

// Action names a coordinator operation whose progress is tracked on its own.
type Action string

const (
	ActionFetchExpenses Action = "fetch-expenses"
	ActionAddExpense    Action = "add-expense"
	ActionFetchProfile  Action = "fetch-profile"
	ActionSaveProfile   Action = "save-profile"
	ActionAddToSavings  Action = "add-to-savings"
)

// Actions returns every tracked action.
func Actions() []Action {
	return []Action{
		ActionFetchExpenses,
		ActionAddExpense,
		ActionFetchProfile,
		ActionSaveProfile,
		ActionAddToSavings,
	}
}

// ActionState is the phase of one action.
type ActionState string

const (
	ActionIdle    ActionState = "idle"
	ActionPending ActionState = "pending"
	ActionSuccess ActionState = "success"
	ActionFailed  ActionState = "failed"
)

// ActionOutcome is the result of the last completed run of an action.
type ActionOutcome string

const (
	OutcomeNone      ActionOutcome = ""
	OutcomeSucceeded ActionOutcome = "succeeded"
	OutcomeFailed    ActionOutcome = "failed"
)
