// Package builtin registers the functions the batchrun CLI can run.
//
// Every function is registered in the default executor registry at package
// init, so both the parent and its isolated worker processes can resolve
// them by name.
package builtin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/aryankumar/batchrun/internal/executor"
)

var (
	// Pow returns a raised to b. Kwargs: a, b.
	Pow = executor.Register("pow", pow)

	// Sleep blocks for sleep_time seconds and returns the slept duration in
	// seconds. It stops early when the task's context is cancelled.
	Sleep = executor.Register("sleep", sleep)

	// Pi approximates pi with a Monte Carlo draw of iterations points
	Pi = executor.Register("pi", pi)

	// SHA256 hashes data, optionally rounds times, and returns the hex digest
	SHA256 = executor.Register("sha256", hash)

	// Fail always returns an error carrying message. Useful to exercise the
	// abort path of a run.
	Fail = executor.Register("fail", fail)
)

// Description returns a one-line description of a built-in function
func Description(name string) string {
	switch name {
	case Pow.Name():
		return "a raised to the power b (kwargs: a, b)"
	case Sleep.Name():
		return "sleep for sleep_time seconds (kwargs: sleep_time)"
	case Pi.Name():
		return "Monte Carlo estimate of pi (kwargs: iterations)"
	case SHA256.Name():
		return "hex SHA-256 of data, repeated rounds times (kwargs: data, rounds)"
	case Fail.Name():
		return "always fails with message (kwargs: message)"
	default:
		return ""
	}
}

func pow(_ context.Context, kw executor.Kwargs) (interface{}, error) {
	a, err := floatArg(kw, "a")
	if err != nil {
		return nil, err
	}
	b, err := floatArg(kw, "b")
	if err != nil {
		return nil, err
	}
	return math.Pow(a, b), nil
}

func sleep(ctx context.Context, kw executor.Kwargs) (interface{}, error) {
	seconds, err := floatArg(kw, "sleep_time")
	if err != nil {
		return nil, err
	}
	if seconds < 0 {
		return nil, fmt.Errorf("sleep_time must not be negative, got %v", seconds)
	}

	d := time.Duration(seconds * float64(time.Second))
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return seconds, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func pi(ctx context.Context, kw executor.Kwargs) (interface{}, error) {
	iterations, err := intArg(kw, "iterations")
	if err != nil {
		return nil, err
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}

	inside := 0
	for i := 0; i < iterations; i++ {
		// Poll for cancellation every 65536 draws
		if i&0xFFFF == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		x, y := rand.Float64(), rand.Float64()
		if x*x+y*y <= 1 {
			inside++
		}
	}

	return 4 * float64(inside) / float64(iterations), nil
}

func hash(_ context.Context, kw executor.Kwargs) (interface{}, error) {
	data, err := stringArg(kw, "data")
	if err != nil {
		return nil, err
	}

	rounds := 1
	if _, ok := kw["rounds"]; ok {
		if rounds, err = intArg(kw, "rounds"); err != nil {
			return nil, err
		}
		if rounds <= 0 {
			return nil, fmt.Errorf("rounds must be positive, got %d", rounds)
		}
	}

	sum := sha256.Sum256([]byte(data))
	for i := 1; i < rounds; i++ {
		sum = sha256.Sum256(sum[:])
	}
	return hex.EncodeToString(sum[:]), nil
}

func fail(_ context.Context, kw executor.Kwargs) (interface{}, error) {
	message := "requested failure"
	if m, ok := kw["message"].(string); ok && m != "" {
		message = m
	}
	return nil, errors.New(message)
}
