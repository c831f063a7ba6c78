package sheets

import "context"

// ValuesReader reads a rectangular range of cells. Cells are strings, numbers
// or booleans as returned by the Sheets API; short rows are not padded.
type ValuesReader interface {
	ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
}
