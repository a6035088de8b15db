package persist

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll.
var (
	blobEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	blobDecoder, _ = zstd.NewReader(nil)
)

// encodeBlob stores v as zstd-compressed JSON.
func encodeBlob(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal blob: %w", err)
	}
	return blobEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func decodeBlob(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	raw, err := blobDecoder.DecodeAll(b, nil)
	if err != nil {
		return fmt.Errorf("decompress blob: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal blob: %w", err)
	}
	return nil
}
