package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONDumpReader lee el volcado del dashboard: un array JSON de objetos.
type JSONDumpReader struct {
	filePath string
}

// NewJSONDumpReader es el constructor.
func NewJSONDumpReader(filePath string) *JSONDumpReader {
	return &JSONDumpReader{filePath: filePath}
}

// ReadAll devuelve los objetos del volcado. Los números se conservan como
// json.Number para no perder precisión antes de normalizarlos.
func (r *JSONDumpReader) ReadAll(ctx context.Context) ([]map[string]interface{}, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	return DecodeDump(ctx, f)
}

// DecodeDump decodifica el array elemento a elemento, así un volcado grande no
// se materializa dos veces en memoria.
func DecodeDump(ctx context.Context, src io.Reader) ([]map[string]interface{}, error) {
	dec := json.NewDecoder(src)
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		// Fichero vacío: nada que importar.
		return []map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("decode dump: expected a JSON array, got %v", tok)
	}

	rows := make([]map[string]interface{}, 0)
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var row map[string]interface{}
		if err := dec.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode dump row %d: %w", len(rows), err)
		}
		if row == nil {
			// null dentro del array: se trata como objeto vacío (sin país).
			row = map[string]interface{}{}
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	return rows, nil
}
