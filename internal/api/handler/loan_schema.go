package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createLoanRequest struct {
	BookID string `json:"bookId" validate:"required,uuid"`
	// UserID is accepted for compatibility; it must match the caller when set.
	UserID string `json:"userId,omitempty" validate:"omitempty,uuid"`
}

type borrowLoanRequest struct {
	DueDate string `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type extendLoanRequest struct {
	ExtraDays int `json:"extraDays" validate:"required,min=1"`
}

// --- Response types ---

type loanLinks struct {
	Self string `json:"self"`
}

type loanResponse struct {
	LoanID          string    `json:"loanId"`
	BookID          string    `json:"bookId"`
	UserID          string    `json:"userId"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	DueDate         *string   `json:"dueDate"`
	Verified        bool      `json:"verified"`
	Approved        bool      `json:"approved"`
	ReturnInitiated bool      `json:"returnInitiated"`
	ReturnVerified  bool      `json:"returnVerified"`
	Links           loanLinks `json:"_links"`
}

type sweepResponse struct {
	Marked int `json:"marked"`
}
