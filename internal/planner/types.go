// Package planner turns a goal description into a scheduled, risk-annotated
// project plan using the template catalog.
package planner

import (
	"time"

	"github.com/felixgeelhaar/smartplan/internal/domain"
)

// GoalInput is a validated plan request. Use GoalRequest.Input or
// GoalInput.Normalize to build one.
type GoalInput struct {
	Goal               string     `json:"goal" yaml:"goal"`
	Deadline           *time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Context            string     `json:"context,omitempty" yaml:"context,omitempty"`
	Domain             string     `json:"domain" yaml:"domain"`
	Resources          []string   `json:"resources" yaml:"resources"`
	WorkingHoursPerDay int        `json:"working_hours_per_day" yaml:"working_hours_per_day"`
	UserID             string     `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	PriorityLevel      string     `json:"priority_level" yaml:"priority_level"`
}

// Task is one scheduled unit of work.
type Task struct {
	ID                   string            `json:"id" yaml:"id"`
	Key                  string            `json:"key" yaml:"key"`
	Title                string            `json:"title" yaml:"title"`
	Description          string            `json:"description" yaml:"description"`
	Priority             domain.Priority   `json:"priority" yaml:"priority"`
	EstimatedHours       float64           `json:"estimated_hours" yaml:"estimated_hours"`
	Dependencies         []string          `json:"dependencies" yaml:"dependencies"`
	StartDate            *time.Time        `json:"start_date" yaml:"start_date"`
	EndDate              *time.Time        `json:"end_date" yaml:"end_date"`
	ConfidenceScore      float64           `json:"confidence_score" yaml:"confidence_score"`
	RiskFactors          []string          `json:"risk_factors" yaml:"risk_factors"`
	SuccessCriteria      []string          `json:"success_criteria" yaml:"success_criteria"`
	ResourcesNeeded      []string          `json:"resources_needed" yaml:"resources_needed"`
	Status               domain.TaskStatus `json:"status" yaml:"status"`
	CompletionPercentage float64           `json:"completion_percentage" yaml:"completion_percentage"`
	EstimatedCost        *float64          `json:"estimated_cost" yaml:"estimated_cost"`

	// dependencyKeys are the template keys behind Dependencies.
	dependencyKeys []string
}

// Scheduled reports whether both dates are set.
func (t *Task) Scheduled() bool {
	return t.StartDate != nil && t.EndDate != nil
}

// Milestone marks the task at which cumulative hours cross a percentage.
type Milestone struct {
	ID           string    `json:"id" yaml:"id"`
	Percentage   int       `json:"percentage" yaml:"percentage"`
	Title        string    `json:"title" yaml:"title"`
	Date         time.Time `json:"date" yaml:"date"`
	KeyTask      string    `json:"key_task" yaml:"key_task"`
	KeyTaskID    string    `json:"key_task_id" yaml:"key_task_id"`
	Description  string    `json:"description" yaml:"description"`
	Deliverables []string  `json:"deliverables" yaml:"deliverables"`
	Stakeholders []string  `json:"stakeholders" yaml:"stakeholders"`
}

// RiskAssessment holds the qualitative risk levels of a plan.
type RiskAssessment struct {
	TimelineRisk             domain.RiskLevel `json:"timeline_risk" yaml:"timeline_risk"`
	ResourceRisk             domain.RiskLevel `json:"resource_risk" yaml:"resource_risk"`
	ComplexityRisk           domain.RiskLevel `json:"complexity_risk" yaml:"complexity_risk"`
	BudgetRisk               domain.RiskLevel `json:"budget_risk" yaml:"budget_risk"`
	TechnicalRisk            domain.RiskLevel `json:"technical_risk" yaml:"technical_risk"`
	StakeholderRisk          domain.RiskLevel `json:"stakeholder_risk" yaml:"stakeholder_risk"`
	HighRiskTasks            int              `json:"high_risk_tasks" yaml:"high_risk_tasks"`
	CriticalPathRisks        int              `json:"critical_path_risks" yaml:"critical_path_risks"`
	TotalEstimatedHours      float64          `json:"total_estimated_hours" yaml:"total_estimated_hours"`
	RiskMitigationStrategies []string         `json:"risk_mitigation_strategies" yaml:"risk_mitigation_strategies"`
}

// Plan is the immutable result of one generation.
type Plan struct {
	PlanID               string              `json:"plan_id" yaml:"plan_id"`
	Goal                 string              `json:"goal" yaml:"goal"`
	Category             domain.Category     `json:"category" yaml:"category"`
	ComplexityScore      float64             `json:"complexity_score" yaml:"complexity_score"`
	InputFingerprint     string              `json:"input_fingerprint" yaml:"input_fingerprint"`
	CatalogVersion       string              `json:"catalog_version" yaml:"catalog_version"`
	TotalEstimatedHours  float64             `json:"total_estimated_hours" yaml:"total_estimated_hours"`
	CriticalPathDuration int                 `json:"critical_path_duration" yaml:"critical_path_duration"`
	ConfidenceScore      float64             `json:"confidence_score" yaml:"confidence_score"`
	Tasks                []Task              `json:"tasks" yaml:"tasks"`
	DependenciesGraph    map[string][]string `json:"dependencies_graph" yaml:"dependencies_graph"`
	Milestones           []Milestone         `json:"milestones" yaml:"milestones"`
	RiskAssessment       RiskAssessment      `json:"risk_assessment" yaml:"risk_assessment"`
	Recommendations      []string            `json:"recommendations" yaml:"recommendations"`
	EstimatedBudget      *float64            `json:"estimated_budget" yaml:"estimated_budget"`
	SuccessProbability   float64             `json:"success_probability" yaml:"success_probability"`
	CreatedAt            time.Time           `json:"created_at" yaml:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at" yaml:"updated_at"`
}
