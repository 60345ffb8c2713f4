package storage

import (
	"fmt"
	"time"

	"marketsync/contract"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// encodeRecord stores a row as a protobuf Struct.
func encodeRecord(record contract.Record) ([]byte, error) {
	fields := make(map[string]any, len(record))
	for column, value := range record {
		fields[column] = normalize(value)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	return proto.Marshal(s)
}

func decodeRecord(data []byte) (contract.Record, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return contract.Record(s.AsMap()), nil
}

// normalize converts the Go values a record may carry into the ones structpb accepts.
func normalize(value any) any {
	switch v := value.(type) {
	case contract.Record:
		return normalize(map[string]any(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	case time.Time:
		return contract.FormatTime(v)
	case *time.Time:
		if v == nil {
			return nil
		}
		return contract.FormatTime(*v)
	case *string:
		if v == nil {
			return nil
		}
		return *v
	default:
		return v
	}
}
