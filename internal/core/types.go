package core

import "realtycore/pkg/domain"

type (
	EntityType         = domain.EntityType
	ContactType        = domain.ContactType
	PropertyType       = domain.PropertyType
	PropertyStatus     = domain.PropertyStatus
	DealStage          = domain.DealStage
	TaskPriority       = domain.TaskPriority
	TaskStatus         = domain.TaskStatus
	Severity           = domain.Severity
	Base               = domain.Base
	Contact            = domain.Contact
	Property           = domain.Property
	Deal               = domain.Deal
	Task               = domain.Task
	ContactPatch       = domain.ContactPatch
	PropertyPatch      = domain.PropertyPatch
	DealPatch          = domain.DealPatch
	TaskPatch          = domain.TaskPatch
	Pipeline           = domain.Pipeline
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
	NotFoundError      = domain.NotFoundError
	PersistentStore    = domain.PersistentStore
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
)

const (
	EntityContact  = domain.EntityContact
	EntityProperty = domain.EntityProperty
	EntityDeal     = domain.EntityDeal
	EntityTask     = domain.EntityTask
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

// NewRulesEngine constructs an empty rules engine.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }

// NewDefaultRulesEngine constructs an engine with the core rules registered.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(StageTransitionRule(domain.DefaultPipeline()))
	return engine
}
