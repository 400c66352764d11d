package statement

import (
	"encoding/json"
	"fmt"
	"io"
)

// EncodeItem marshals a single item to JSON and writes it to the writer, followed by a newline,
// in JSONL format.
func EncodeItem(w io.Writer, it *Item) error {
	data, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write item: %w", err)
	}
	return nil
}

// EncodeItems writes items in JSONL format, in order.
func EncodeItems(w io.Writer, items []*Item) error {
	for _, it := range items {
		if err := EncodeItem(w, it); err != nil {
			return err
		}
	}
	return nil
}
