package handler

import (
	"github.com/bookwise/lending-api/internal/core/domain"
)

// --- Domain → HTTP response ---

func toLoanResponse(l *domain.Loan) loanResponse {
	s := l.Snapshot()
	resp := loanResponse{
		LoanID:          s.ID.String(),
		BookID:          s.BookRef.String(),
		UserID:          s.UserRef.String(),
		Status:          s.Status.String(),
		CreatedAt:       s.CreatedAt.UTC(),
		Verified:        s.Verified,
		Approved:        s.Approved,
		ReturnInitiated: s.ReturnInitiated,
		ReturnVerified:  s.ReturnVerified,
		Links:           loanLinks{Self: "/v1/loans/" + s.ID.String()},
	}
	if s.DueDate != nil {
		d := s.DueDate.String()
		resp.DueDate = &d
	}
	return resp
}

func toLoanResponses(loans []*domain.Loan) []loanResponse {
	out := make([]loanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l))
	}
	return out
}
