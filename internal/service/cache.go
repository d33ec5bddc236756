package service

import (
	"encoding/json"

	"smartshelf/internal/store"
)

func marshalStats(stats *store.ItemStats) (string, error) {
	b, err := json.Marshal(stats)
	return string(b), err
}

func unmarshalStats(data string, stats *store.ItemStats) error {
	return json.Unmarshal([]byte(data), stats)
}
