package account

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsValidAccountType(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"cash", true},
		{"momo", true},
		{"om", true},
		{"bank", true},
		{"savings", true},
		{"CASH", false},
		{"credit", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := IsValidAccountType(tt.input)
			if got != tt.want {
				t.Errorf("IsValidAccountType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"XAF", true},
		{"XOF", true},
		{"USD", true},
		{"xaf", false},
		{"XA", false},
		{"ABC", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := IsValidCurrency(tt.input)
			if got != tt.want {
				t.Errorf("IsValidCurrency(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCreateParams_Validate(t *testing.T) {
	valid := CreateParams{
		ID:             "acc-1",
		UserID:         1,
		Name:           "Wallet",
		Number:         "677123456",
		Type:           TypeCash,
		Currency:       "XAF",
		InitialBalance: decimal.NewFromInt(5000),
	}

	tests := []struct {
		name    string
		mutate  func(p *CreateParams)
		wantErr error
	}{
		{name: "valid", mutate: func(p *CreateParams) {}},
		{name: "zero balance", mutate: func(p *CreateParams) { p.InitialBalance = decimal.Zero }},
		{name: "blank name", mutate: func(p *CreateParams) { p.Name = "   " }, wantErr: ErrInvalidInput},
		{name: "blank number", mutate: func(p *CreateParams) { p.Number = "" }, wantErr: ErrInvalidInput},
		{name: "bad type", mutate: func(p *CreateParams) { p.Type = "credit" }, wantErr: ErrInvalidAccountType},
		{name: "bad currency", mutate: func(p *CreateParams) { p.Currency = "ZZZ" }, wantErr: ErrInvalidCurrency},
		{name: "negative balance", mutate: func(p *CreateParams) { p.InitialBalance = decimal.NewFromInt(-1) }, wantErr: ErrInvalidBalance},
		{name: "three decimals", mutate: func(p *CreateParams) { p.InitialBalance = decimal.RequireFromString("1.005") }, wantErr: ErrInvalidBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSavingsReference(t *testing.T) {
	tests := []struct {
		phone  string
		userID int64
		want   string
	}{
		{"677123456", 1, "SAV-3456"},
		{"+237 699 00 11 22", 7, "SAV-1 22"},
		{"123", 7, "SAV-123"},
		{"", 42, "SAV-0042"},
		{"", 123456, "SAV-3456"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := SavingsReference(tt.phone, tt.userID); got != tt.want {
				t.Errorf("SavingsReference(%q, %d) = %q, want %q", tt.phone, tt.userID, got, tt.want)
			}
		})
	}
}
