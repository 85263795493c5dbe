package bas

// SourceAdapter turns one platform's data into the canonical Summary.
type SourceAdapter interface {
	// Source returns the platform the adapter reads.
	Source() Source

	// Normalize builds the summary for the given period label.
	Normalize(period string) (Summary, error)
}

var (
	_ SourceAdapter = XeroAdapter{}
	_ SourceAdapter = MYOBAdapter{}
)
