/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// usrl-bench drives publish load against a region to measure throughput
// and, at high writer counts on an MWMR topic, backpressure behavior.
package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/vedarsh/usrl-core/pubsub"
	"github.com/vedarsh/usrl-core/region"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "usrl-bench",
		Short: "Load-generate a USRL region and report publish throughput",
	}
	root.AddCommand(newSWMRCmd(), newMWMRCmd())
	return root
}

func newSWMRCmd() *cobra.Command {
	var path string
	var slotCount, payloadSize int
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "swmr",
		Short: "Benchmark a single-writer topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(path, "bench-swmr", region.SWMR, slotCount, payloadSize, 1, duration)
		},
	}
	cmd.Flags().StringVar(&path, "region", "/dev/shm/usrl-bench", "backing region path")
	cmd.Flags().IntVar(&slotCount, "slots", 4096, "ring slot count (rounded to a power of two)")
	cmd.Flags().IntVar(&payloadSize, "payload", 64, "payload size in bytes")
	cmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "how long to publish")
	return cmd
}

func newMWMRCmd() *cobra.Command {
	var path string
	var slotCount, payloadSize, writers int
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "mwmr",
		Short: "Benchmark a multi-writer topic under concurrent publishers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(path, "bench-mwmr", region.MWMR, slotCount, payloadSize, writers, duration)
		},
	}
	cmd.Flags().StringVar(&path, "region", "/dev/shm/usrl-bench", "backing region path")
	cmd.Flags().IntVar(&slotCount, "slots", 4096, "ring slot count (rounded to a power of two)")
	cmd.Flags().IntVar(&payloadSize, "payload", 64, "payload size in bytes")
	cmd.Flags().IntVar(&writers, "writers", 4, "concurrent publisher goroutines")
	cmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "how long to publish")
	return cmd
}

func runBench(path, topicName string, ringType region.RingType, slotCount, payloadSize, writers int, duration time.Duration) error {
	regionPath := fmt.Sprintf("%s-%d", path, os.Getpid())
	r, _, err := region.Build(regionPath, 64<<20, []region.TopicConfig{
		{Name: topicName, SlotCount: slotCount, PayloadSize: payloadSize, Type: ringType},
	})
	if err != nil {
		return fmt.Errorf("usrl-bench: %w", err)
	}
	defer region.Remove(regionPath)
	defer r.Close()

	topic, err := r.Lookup(topicName)
	if err != nil {
		return fmt.Errorf("usrl-bench: %w", err)
	}

	payload := make([]byte, payloadSize)

	var published, timeouts int64
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			pub, err := pubsub.NewPublisher(topic, uint16(id))
			if err != nil {
				return
			}
			for {
				select {
				case <-stop:
					return
				default:
				}
				if err := pub.Publish(payload); err != nil {
					if k, ok := region.KindOf(err); ok && k == region.KindTimeout {
						atomic.AddInt64(&timeouts, 1)
						continue
					}
					return
				}
				atomic.AddInt64(&published, 1)
			}
		}(w)
	}

	time.Sleep(duration)
	close(stop)
	wg.Wait()

	throughput := float64(published) / duration.Seconds()
	fmt.Printf("topic=%s type=%s writers=%d slots=%d payload=%d\n", topicName, ringType, writers, slotCount, payloadSize)
	fmt.Printf("published=%d timeouts=%d duration=%s throughput=%.0f msg/s\n", published, timeouts, duration, throughput)
	return nil
}
