// Package main is the development shell around the engine: it drives a
// sample workload through the table layer so changes can be eyeballed
// end to end. It uses the cobra package for the command-line surface.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"radix/config"
	"radix/ops"
	"radix/table"
)

type demoFlags struct {
	configFile string
	partitions int
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "radix",
		Short: "Columnar execution core workbench",
	}

	rootCmd.AddCommand(demoCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func demoCmd() *cobra.Command {
	flags := demoFlags{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a sample workload: expression, filter, grouping, repartition",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if flags.configFile != "" {
				var err error
				if cfg, err = config.Load(flags.configFile); err != nil {
					return err
				}
			}
			return runDemo(cmd, cfg, flags.partitions)
		},
	}
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "engine config file (TOML)")
	cmd.Flags().IntVarP(&flags.partitions, "partitions", "p", 3, "number of row partitions")
	return cmd
}

func runDemo(cmd *cobra.Command, cfg config.Config, partitions int) error {
	if partitions < 1 {
		return fmt.Errorf("partitions must be positive, got %d", partitions)
	}

	keys := []string{"ash", "birch", "ash", "cedar", "birch", "ash", "cedar", "oak", "oak"}
	values := []uint64{3, 1, 4, 1, 5, 9, 2, 6, 5}
	valid := []bool{true, true, true, true, true, false, true, true, true}

	sizes := splitRows(len(keys), partitions)
	t := table.New(sizes...)
	t.SetWorkers(cfg.Workers)
	d := ops.NewDictionary()

	if err := table.Push(t, d, keys); err != nil {
		return err
	}
	if err := table.PushWithBitmap(t, d, values, valid); err != nil {
		return err
	}

	// values + values, then compare against a constant.
	sum := table.NewExpression("+", 1, 1)
	threshold, err := ops.NewConst(d, uint64(8))
	if err != nil {
		return err
	}
	pred := &table.TableExpression{
		Op:     "<",
		Inputs: []table.ExpressionInput{table.Subexpr(sum), table.ConstInput(threshold)},
	}
	if err := t.AddExpressionAsNewColumn(d, pred); err != nil {
		return err
	}

	printColumns(cmd, t, d, "input", []int{0, 1, 2})

	groupIDs, groupCounts, err := t.BuildGroups(d, []int{0})
	if err != nil {
		return err
	}
	cmd.Printf("group ids per partition: %v (groups per partition %v)\n", groupIDs, groupCounts)

	hash, err := t.BuildHash(d, []int{0})
	if err != nil {
		return err
	}
	plan := table.NewRepartitionPlan(hash, cfg.Workers, cfg.BucketBits)
	buckets, err := t.ColumnRepartition(d, hash, plan, 0)
	if err != nil {
		return err
	}
	sizesOut := make([]int, len(buckets))
	for b, c := range buckets {
		sizesOut[b] = c.Data().Len()
	}
	cmd.Printf("repartitioned %d rows into %d buckets, sizes %v\n", t.Rows(), plan.NumberOfBuckets, sizesOut)

	if err := t.Filter(d, table.NewExpression("==", 0, 0)); err != nil {
		return err
	}
	printColumns(cmd, t, d, "after all-true filter", []int{0, 1, 2})
	return nil
}

func splitRows(n, partitions int) []int {
	base := n / partitions
	rest := n % partitions
	sizes := make([]int, 0, partitions)
	for p := 0; p < partitions; p++ {
		s := base
		if p < rest {
			s++
		}
		if s > 0 {
			sizes = append(sizes, s)
		}
	}
	return sizes
}

func printColumns(cmd *cobra.Command, t *table.Table, d *ops.Dictionary, title string, colIDs []int) {
	cmd.Printf("%s:\n", title)
	rendered := make([][]string, 0, len(colIDs))
	for _, id := range colIDs {
		s, err := t.MaterializeAsString(d, id)
		if err != nil {
			cmd.Printf("  column %d: %v\n", id, err)
			return
		}
		rendered = append(rendered, s)
	}
	for row := 0; row < t.Rows(); row++ {
		cells := make([]string, len(rendered))
		for i := range rendered {
			cells[i] = rendered[i][row]
		}
		cmd.Printf("  %s\n", strings.Join(cells, "\t"))
	}
}
