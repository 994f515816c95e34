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

// usrl-inspect attaches to an existing region and prints its topic table
// and current ring state, without publishing or consuming anything.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vedarsh/usrl-core/region"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "usrl-inspect",
		Short: "Dump the topic table and ring state of a USRL region",
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(path)
		},
	}
	cmd.Flags().StringVar(&path, "region", "", "region path to attach to")
	cmd.MarkFlagRequired("region")
	return cmd
}

func inspect(path string) error {
	r, err := region.Attach(path)
	if err != nil {
		return fmt.Errorf("usrl-inspect: %w", err)
	}
	defer r.Close()

	fmt.Printf("region: %s\n", r.Path())
	fmt.Printf("topics: %d\n\n", r.TopicCount())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tSLOTS\tSLOT_SIZE\tW_HEAD")
	for _, info := range r.Describe() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", info.Name, info.Type, info.SlotCount, info.SlotSize, info.WHead)
	}
	return w.Flush()
}
