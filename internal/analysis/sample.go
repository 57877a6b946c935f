package analysis

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed sample_data.json
var sampleJSON []byte

var (
	sampleOnce sync.Once
	sample     *Result
	sampleErr  error
)

// Sample returns a private copy of the bundled sample dataset. The dataset is
// decoded once per process; callers may modify the returned value freely.
func Sample() *Result {
	sampleOnce.Do(func() {
		sample, sampleErr = Decode(sampleJSON)
	})
	if sampleErr != nil {
		panic(fmt.Sprintf("analysis: bundled sample dataset is invalid: %v", sampleErr))
	}
	return sample.Clone()
}
