package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/quickkv/quickkv/cmd/util"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the local store",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)

	// perfRegistry collects per-test latency timers for the summary table
	perfRegistry = gometrics.NewRegistry()
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for the local store")

	// Print configuration
	cfg := util.GetEngineConfig()
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Runtime: %s\n", cfg.Runtime)
	if cfg.Runtime != "memory" {
		fmt.Printf("Path: %s\n", cfg.Path)
	}
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	setResult := runTimedBenchmark("set", func(b *testing.B) {
		// prepare keys
		getKey, iter := getKeys("set")

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				err := engine.Delete(k)
				if err != nil {
					log.Printf("(set) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				timed("set", func() {
					if err := engine.Set(getKey(counter), []byte("test"), 0); err != nil {
						log.Printf("(set) - error setting key: %v\n", err)
					}
				})
				counter++
			}
		})
	})

	results["set"] = setResult
	printResult("set", setResult)

	setLargeValueResult := runTimedBenchmark("set-large", func(b *testing.B) {
		// prepare large value
		largeValue := make([]byte, perfLargeValueSizeKB*1024)

		// prepare keys
		getKey, iter := getKeys("set-large")

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				err := engine.Delete(k)
				if err != nil {
					log.Printf("(set-large) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				timed("set-large", func() {
					if err := engine.Set(getKey(counter), largeValue, 0); err != nil {
						log.Printf("(set-large) - error setting key: %v", err)
					}
				})
				counter++
			}
		})
	})

	results["set-large"] = setLargeValueResult
	printResult("set-large", setLargeValueResult)

	getResult := runTimedBenchmark("get", func(b *testing.B) {
		// prepare keys
		getKey, iter := getKeys("get")

		// set keys
		iter(func(k string) {
			err := engine.Set(k, []byte("test"), 0)
			if err != nil {
				log.Printf("(get) - error setting key: %v\n", err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				err := engine.Delete(k)
				if err != nil {
					log.Printf("(get) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				timed("get", func() {
					if _, _, err := engine.Get(getKey(counter)); err != nil {
						log.Printf("(get) - error getting key: %v\n", err)
					}
				})
				counter++
			}
		})
	})

	results["get"] = getResult
	printResult("get", getResult)

	deleteResult := runTimedBenchmark("delete", func(b *testing.B) {
		// prepare keys
		getKey, iter := getKeys("delete")

		// set keys
		iter(func(k string) {
			err := engine.Set(k, []byte("test"), 0)
			if err != nil {
				log.Printf("(delete) - error setting key: %v\n", err)
			}
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				timed("delete", func() {
					if err := engine.Delete(getKey(counter)); err != nil {
						log.Printf("(delete) - error deleting key: %v\n", err)
					}
				})
				counter++
			}
		})
	})

	results["delete"] = deleteResult
	printResult("delete", deleteResult)

	existsResult := runTimedBenchmark("exists", func(b *testing.B) {
		// prepare keys
		getKey, iter := getKeys("exists")

		// set keys
		iter(func(k string) {
			err := engine.Set(k, []byte("test"), 0)
			if err != nil {
				log.Printf("(exists) - error setting key: %v\n", err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				err := engine.Delete(k)
				if err != nil {
					log.Printf("(exists) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				timed("exists", func() {
					if _, err := engine.Exists(getKey(counter)); err != nil {
						log.Printf("(exists) - error checking key: %v\n", err)
					}
				})
				counter++
			}
		})
	})

	results["exists"] = existsResult
	printResult("exists", existsResult)

	mixedUsageResult := runTimedBenchmark("mixed", func(b *testing.B) {
		// prepare keys
		getKey, iter := getKeys("mixed")

		// set keys
		iter(func(k string) {
			err := engine.Set(k, []byte("test"), 0)
			if err != nil {
				log.Printf("(mixed) - error setting key: %v\n", err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				err := engine.Delete(k)
				if err != nil {
					log.Printf("(mixed) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				timed("mixed", func() {
					var err error
					switch counter % 4 {
					case 0: // set
						err = engine.Set(key, []byte("test"), 0)
					case 1: // get
						_, _, err = engine.Get(key)
					case 2: // delete
						err = engine.Delete(key)
					case 3: // exists
						_, err = engine.Exists(key)
					}

					if err != nil {
						log.Printf("(mixed) - error performing operation (%d): %v\n", counter%4, err)
					}
				})
				counter++
			}
		})
	})

	results["mixed"] = mixedUsageResult
	printResult("mixed", mixedUsageResult)

	// Print latency percentiles collected by the timers
	printPercentiles()

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// runTimedBenchmark runs fn under testing.Benchmark unless the test is skipped
func runTimedBenchmark(test string, fn func(b *testing.B)) testing.BenchmarkResult {
	if shouldSkip(test) {
		return testing.BenchmarkResult{}
	}
	return testing.Benchmark(fn)
}

// timed records the duration of op in the per-test latency timer
func timed(test string, op func()) {
	gometrics.GetOrRegisterTimer(test, perfRegistry).Time(op)
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// printPercentiles prints the latency distribution of every recorded timer
func printPercentiles() {
	fmt.Println()
	fmt.Println("Latency percentiles:")
	perfRegistry.Each(func(name string, metric interface{}) {
		timer, ok := metric.(gometrics.Timer)
		if !ok || timer.Count() == 0 {
			return
		}
		ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
		fmt.Printf("%-20sp50=%s\tp95=%s\tp99=%s\tmax=%s\n",
			name,
			time.Duration(int64(ps[0])),
			time.Duration(int64(ps[1])),
			time.Duration(int64(ps[2])),
			time.Duration(timer.Max()),
		)
	})
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"P50", "P95", "P99",
		"Runtime", "Path",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	cfg := util.GetEngineConfig()

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
			nsPerOp = 0
			opsPerSec = 0
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		ps := []float64{0, 0, 0}
		if timer := perfRegistry.Get(test); timer != nil {
			if t, ok := timer.(gometrics.Timer); ok {
				ps = t.Percentiles([]float64{0.5, 0.95, 0.99})
			}
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			time.Duration(int64(ps[0])).String(),
			time.Duration(int64(ps[1])).String(),
			time.Duration(int64(ps[2])).String(),
			string(cfg.Runtime),
			cfg.Path,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
