package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"safety-training-service/internal/domain"
)

// CertificateIssuer mints certificate records for passing attempts.
type CertificateIssuer struct {
	now func() time.Time
}

func NewCertificateIssuer() *CertificateIssuer {
	return &CertificateIssuer{now: time.Now}
}

// NewCertificateIssuerWithClock allows deterministic timestamps in tests.
func NewCertificateIssuerWithClock(now func() time.Time) *CertificateIssuer {
	return &CertificateIssuer{now: now}
}

// IssueIfEligible returns a certificate when the attempt passed, nil
// otherwise. It is called exactly once per completed, passed attempt and
// never retried for the same attempt.
func (i *CertificateIssuer) IssueIfEligible(result domain.ScoreResult, userID, courseID, testResultID string) *domain.Certificate {
	if !result.Passed {
		return nil
	}
	issuedAt := i.now()
	return &domain.Certificate{
		ID:           uuid.NewString(),
		UserID:       userID,
		CourseID:     courseID,
		TestResultID: testResultID,
		Number:       certificateNumber(issuedAt, userID),
		IssuedAt:     issuedAt,
	}
}

// certificateNumber builds the CERT-<millis>-<uid prefix> composite. The
// timestamp component makes two issuances at different instants
// distinguishable.
func certificateNumber(issuedAt time.Time, userID string) string {
	prefix := userID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("CERT-%d-%s", issuedAt.UnixMilli(), prefix)
}
