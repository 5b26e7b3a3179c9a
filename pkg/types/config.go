package types

import "fmt"

// Identifier strategies for new books.
const (
	// IDLines uses the number of lines in the table file, header included.
	// Identifiers are dense and may repeat a deleted book's id.
	IDLines = "lines"
	// IDSequence uses the largest numeric id in the table plus one.
	IDSequence = "sequence"
	// IDUUID uses a UUID v7.
	IDUUID = "uuid"
)

// knownIDStrategies lists the strategies that Validate accepts.
var knownIDStrategies = map[string]bool{
	IDLines:    true,
	IDSequence: true,
	IDUUID:     true,
}

// Config holds everything the store needs. It is built once at startup and
// passed to the constructors; nothing in the store reads configuration on its
// own.
type Config struct {
	TableFile  string `json:"table_file" yaml:"table_file"`
	Schema     Schema `json:"-" yaml:"-"`
	IDStrategy string `json:"id_strategy" yaml:"id_strategy"`
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.TableFile == "" {
		return fmt.Errorf("%w: table file must not be empty", ErrConfigInvalid)
	}
	if err := c.Schema.Validate(); err != nil {
		return err
	}
	if c.IDStrategy != "" && !knownIDStrategies[c.IDStrategy] {
		return fmt.Errorf("%w: unknown id strategy %q", ErrConfigInvalid, c.IDStrategy)
	}
	return nil
}

// Strategy returns the configured id strategy, defaulting to IDLines.
func (c Config) Strategy() string {
	if c.IDStrategy == "" {
		return IDLines
	}
	return c.IDStrategy
}
