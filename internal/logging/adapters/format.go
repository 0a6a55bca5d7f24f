package adapters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"letraz-autoapply/internal/logging/types"
)

// formatJSON renders an entry as a single JSON object; fields are flattened
// into the top level next to level, message and time.
func formatJSON(entry *types.LogEntry) (string, error) {
	logData := make(map[string]interface{}, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		logData[k] = v
	}
	logData["level"] = entry.Level.String()
	logData["message"] = entry.Message
	logData["time"] = entry.Timestamp.Format(time.RFC3339)

	data, err := json.Marshal(logData)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatText renders an entry as "time [LEVEL] message k=v ..." with keys sorted
func formatText(entry *types.LogEntry, level string) string {
	timestamp := entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00")
	output := fmt.Sprintf("%s [%s] %s", timestamp, level, entry.Message)

	if len(entry.Fields) == 0 {
		return output
	}

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
	}
	return output + " " + strings.Join(fields, " ")
}

func format(entry *types.LogEntry, formatName string, level string) (string, error) {
	if strings.EqualFold(formatName, "text") {
		return formatText(entry, level), nil
	}
	return formatJSON(entry)
}
