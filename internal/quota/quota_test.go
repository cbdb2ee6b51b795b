package quota

import (
	"errors"
	"testing"

	"github.com/shaiso/Langsync/internal/domain"
)

func TestCheckAdmission_NilAccount(t *testing.T) {
	err := CheckAdmission(nil)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestCheckAdmission_Suspended(t *testing.T) {
	err := CheckAdmission(&domain.Account{ID: "a1", IsSuspended: true})
	if !errors.Is(err, ErrAccountSuspended) {
		t.Errorf("expected ErrAccountSuspended, got %v", err)
	}
}

func TestCheckAdmission_Limits(t *testing.T) {
	tests := []struct {
		name    string
		account domain.Account
		wantErr bool
	}{
		{
			name:    "free account under both limits",
			account: domain.Account{TotalIndexedDocumentCount: 99, TotalIndexedDocumentTokens: 99_999},
			wantErr: false,
		},
		{
			name:    "free account at document limit",
			account: domain.Account{TotalIndexedDocumentCount: 100},
			wantErr: true,
		},
		{
			name:    "free account at token limit",
			account: domain.Account{TotalIndexedDocumentTokens: 100_000},
			wantErr: true,
		},
		{
			name:    "subscriber above free document limit",
			account: domain.Account{IsSubscriber: true, TotalIndexedDocumentCount: 500},
			wantErr: false,
		},
		{
			name:    "subscriber at subscriber document limit",
			account: domain.Account{IsSubscriber: true, TotalIndexedDocumentCount: 1_000},
			wantErr: true,
		},
		{
			name:    "subscriber at subscriber token limit",
			account: domain.Account{IsSubscriber: true, TotalIndexedDocumentTokens: 2_000_000},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAdmission(&tt.account)
			if tt.wantErr && !errors.Is(err, ErrQuotasExceeded) {
				t.Errorf("expected ErrQuotasExceeded, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCheckAdmission_UnlimitedBypassesEverything(t *testing.T) {
	account := &domain.Account{
		IsUnlimited:                true,
		TotalIndexedDocumentCount:  1_000_000,
		TotalIndexedDocumentTokens: 1_000_000_000,
	}
	if err := CheckAdmission(account); err != nil {
		t.Errorf("unlimited account should always be admitted, got %v", err)
	}

	// Даже заблокированный unlimited-аккаунт проходит: unlimited
	// проверяется первым, как в исходной политике.
	account.IsSuspended = true
	if err := CheckAdmission(account); err != nil {
		t.Errorf("unlimited account should bypass suspension check, got %v", err)
	}
}

func TestProgressFor(t *testing.T) {
	account := &domain.Account{
		TotalIndexedDocumentCount:  50,
		TotalIndexedDocumentTokens: 25_000,
	}

	p := ProgressFor(account)

	if p.TotalIndexedDocuments.Current != 50 || p.TotalIndexedDocuments.Max != 100 {
		t.Errorf("unexpected document progress: %+v", p.TotalIndexedDocuments)
	}
	if p.TotalIndexedDocuments.Percent != 50 {
		t.Errorf("expected 50%%, got %v", p.TotalIndexedDocuments.Percent)
	}
	if p.TotalIndexedDocumentTokens.Percent != 25 {
		t.Errorf("expected 25%%, got %v", p.TotalIndexedDocumentTokens.Percent)
	}
}

func TestProgressFor_CapsAtHundred(t *testing.T) {
	account := &domain.Account{TotalIndexedDocumentCount: 250}

	p := ProgressFor(account)

	if p.TotalIndexedDocuments.Percent != 100 {
		t.Errorf("percent should cap at 100, got %v", p.TotalIndexedDocuments.Percent)
	}
}

func TestProgressFor_UnlimitedShowsZero(t *testing.T) {
	account := &domain.Account{
		IsUnlimited:               true,
		TotalIndexedDocumentCount: 9_999,
	}

	p := ProgressFor(account)

	if p.TotalIndexedDocuments.Current != 0 {
		t.Errorf("unlimited account should show 0 usage, got %d", p.TotalIndexedDocuments.Current)
	}
}
