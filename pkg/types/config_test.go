package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty table file returns ErrConfigInvalid",
			config:  Config{TableFile: "", Schema: DefaultSchema()},
			wantErr: ErrConfigInvalid,
		},
		{
			name:    "unknown id strategy returns ErrConfigInvalid",
			config:  Config{TableFile: "books.csv", Schema: DefaultSchema(), IDStrategy: "random"},
			wantErr: ErrConfigInvalid,
		},
		{
			name:    "broken schema returns ErrSchemaInvalid",
			config:  Config{TableFile: "books.csv", Schema: Schema{}},
			wantErr: ErrSchemaInvalid,
		},
		{
			name:    "valid config with default strategy",
			config:  Config{TableFile: "books.csv", Schema: DefaultSchema()},
			wantErr: nil,
		},
		{
			name:    "valid config with uuid strategy",
			config:  Config{TableFile: "books.csv", Schema: DefaultSchema(), IDStrategy: IDUUID},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigStrategyDefaultsToLines(t *testing.T) {
	if got := (Config{}).Strategy(); got != IDLines {
		t.Fatalf("expected %q, got %q", IDLines, got)
	}
	if got := (Config{IDStrategy: IDSequence}).Strategy(); got != IDSequence {
		t.Fatalf("expected %q, got %q", IDSequence, got)
	}
}
