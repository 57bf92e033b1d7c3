package domain_test

import (
	"testing"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestCheck_CanTransition(t *testing.T) {
	tests := []struct {
		name      string
		checkType domain.CheckType
		status    domain.CheckStatus
		target    domain.CheckStatus
		want      bool
	}{
		{
			name:      "received portfolio to collected",
			checkType: domain.CheckReceived,
			status:    domain.CheckPortfolio,
			target:    domain.CheckCollected,
			want:      true,
		},
		{
			name:      "received portfolio to bounced",
			checkType: domain.CheckReceived,
			status:    domain.CheckPortfolio,
			target:    domain.CheckBounced,
			want:      true,
		},
		{
			name:      "received portfolio to paid is illegal",
			checkType: domain.CheckReceived,
			status:    domain.CheckPortfolio,
			target:    domain.CheckPaid,
			want:      false,
		},
		{
			name:      "given portfolio to paid",
			checkType: domain.CheckGiven,
			status:    domain.CheckPortfolio,
			target:    domain.CheckPaid,
			want:      true,
		},
		{
			name:      "given portfolio to bounced",
			checkType: domain.CheckGiven,
			status:    domain.CheckPortfolio,
			target:    domain.CheckBounced,
			want:      true,
		},
		{
			name:      "given portfolio to collected is illegal",
			checkType: domain.CheckGiven,
			status:    domain.CheckPortfolio,
			target:    domain.CheckCollected,
			want:      false,
		},
		{
			name:      "collected is terminal",
			checkType: domain.CheckReceived,
			status:    domain.CheckCollected,
			target:    domain.CheckBounced,
			want:      false,
		},
		{
			name:      "paid is terminal",
			checkType: domain.CheckGiven,
			status:    domain.CheckPaid,
			target:    domain.CheckPortfolio,
			want:      false,
		},
		{
			name:      "bounced cannot return to portfolio",
			checkType: domain.CheckReceived,
			status:    domain.CheckBounced,
			target:    domain.CheckPortfolio,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := domain.Check{CheckType: tt.checkType, Status: tt.status}
			assert.Equal(t, tt.want, check.CanTransition(tt.target))
		})
	}
}

func TestCheck_SettledStatus(t *testing.T) {
	received := domain.Check{CheckType: domain.CheckReceived}
	assert.Equal(t, domain.CheckCollected, received.SettledStatus())

	given := domain.Check{CheckType: domain.CheckGiven}
	assert.Equal(t, domain.CheckPaid, given.SettledStatus())
}

func TestCheck_IsTerminal(t *testing.T) {
	tests := []struct {
		name      string
		checkType domain.CheckType
		status    domain.CheckStatus
		want      bool
	}{
		{"portfolio received", domain.CheckReceived, domain.CheckPortfolio, false},
		{"portfolio given", domain.CheckGiven, domain.CheckPortfolio, false},
		{"collected", domain.CheckReceived, domain.CheckCollected, true},
		{"paid", domain.CheckGiven, domain.CheckPaid, true},
		{"bounced received", domain.CheckReceived, domain.CheckBounced, true},
		{"bounced given", domain.CheckGiven, domain.CheckBounced, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := domain.Check{CheckType: tt.checkType, Status: tt.status}
			assert.Equal(t, tt.want, check.IsTerminal())
		})
	}
}
