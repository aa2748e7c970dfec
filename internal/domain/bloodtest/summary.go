package bloodtest

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// UnspecifiedType labels tests stored without a test_type.
const UnspecifiedType = "unspecified"

func typeKey(testType string) string {
	if testType == "" {
		return UnspecifiedType
	}
	return testType
}

// TypeCount is one entry of a TypeCounts tally.
type TypeCount struct {
	Type  string
	Count int
}

// TypeCounts tallies tests per type label in first-seen order. It encodes as
// a JSON object whose keys keep that order.
type TypeCounts []TypeCount

func (tc TypeCounts) add(label string) TypeCounts {
	for i := range tc {
		if tc[i].Type == label {
			tc[i].Count++
			return tc
		}
	}
	return append(tc, TypeCount{Type: label, Count: 1})
}

// Get returns the count for label, zero if absent.
func (tc TypeCounts) Get(label string) int {
	for _, c := range tc {
		if c.Type == label {
			return c.Count
		}
	}
	return 0
}

func (tc TypeCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range tc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Type)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary is the roll-up of a patient's most recent tests.
type Summary struct {
	TotalTests  int        `json:"total_tests"`
	CountByType TypeCounts `json:"count_by_type"`
	Metric      string     `json:"metric,omitempty"`
	MetricAvg   *float64   `json:"metric_avg"`
}

// summarize folds tests in the order given. A test contributes to the metric
// average through its first result addressed by metric.
func summarize(tests []*BloodTest, metric string) Summary {
	s := Summary{TotalTests: len(tests), CountByType: TypeCounts{}, Metric: metric}

	var (
		sum float64
		n   int
	)
	for _, bt := range tests {
		s.CountByType = s.CountByType.add(typeKey(bt.TestType))

		if metric == "" {
			continue
		}
		for _, r := range bt.Results {
			if r.MetricKeyMatches(metric) {
				sum += r.Value
				n++
				break
			}
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		s.MetricAvg = &avg
	}
	return s
}
