// file: internals/features/audits/responses/model/corrective_action.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"auditku_backend/internals/helpers/answer"
)

type RemediationStatus string

const (
	RemediationPending    RemediationStatus = "Pending"
	RemediationInProgress RemediationStatus = "In Progress"
	RemediationResolved   RemediationStatus = "Resolved"
)

func (s RemediationStatus) Valid() bool {
	switch s {
	case RemediationPending, RemediationInProgress, RemediationResolved:
		return true
	}
	return false
}

type ManagerRemediation struct {
	Comment   string            `json:"comment"`
	Proofs    []string          `json:"proofs"`
	Status    RemediationStatus `json:"status"`
	Author    uuid.UUID         `json:"author"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type AuditorVerification struct {
	Approved   bool       `json:"approved"`
	Comment    string     `json:"comment,omitempty"`
	VerifiedBy *uuid.UUID `json:"verifiedBy,omitempty"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

// CorrectiveAction = catatan remediasi untuk satu pertanyaan yang gagal.
type CorrectiveAction struct {
	QuestionID   string              `json:"questionId"`
	Finding      answer.Value        `json:"finding"`
	Manager      ManagerRemediation  `json:"manager"`
	Verification AuditorVerification `json:"verification"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func (a CorrectiveAction) IsVerified() bool {
	return a.Verification.VerifiedBy != nil
}

// CorrectiveActions: map keyed by questionId + urutan insert.
// Bentuk persist tetap array; entry ganda saat decode digabung (yang terakhir menang).
type CorrectiveActions struct {
	order []string
	byQID map[string]*CorrectiveAction
}

func NewCorrectiveActions() *CorrectiveActions {
	return &CorrectiveActions{byQID: map[string]*CorrectiveAction{}}
}

func (c *CorrectiveActions) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

func (c *CorrectiveActions) Get(questionID string) (*CorrectiveAction, bool) {
	if c == nil {
		return nil, false
	}
	a, ok := c.byQID[questionID]
	return a, ok
}

// Put menyimpan action; questionId yang sudah ada diganti di posisi yang sama.
func (c *CorrectiveActions) Put(a CorrectiveAction) {
	if c.byQID == nil {
		c.byQID = map[string]*CorrectiveAction{}
	}
	if _, ok := c.byQID[a.QuestionID]; !ok {
		c.order = append(c.order, a.QuestionID)
	}
	cp := a
	c.byQID[a.QuestionID] = &cp
}

// List mengembalikan salinan sesuai urutan insert.
func (c *CorrectiveActions) List() []CorrectiveAction {
	if c == nil {
		return []CorrectiveAction{}
	}
	out := make([]CorrectiveAction, 0, len(c.order))
	for _, qid := range c.order {
		out = append(out, *c.byQID[qid])
	}
	return out
}

func (c *CorrectiveActions) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.List())
}

func (c *CorrectiveActions) UnmarshalJSON(b []byte) error {
	var arr []CorrectiveAction
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	c.order = nil
	c.byQID = map[string]*CorrectiveAction{}
	for _, a := range arr {
		c.Put(a)
	}
	return nil
}
