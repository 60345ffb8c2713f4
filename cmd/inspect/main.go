package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"marketsync/contract"
	"marketsync/infrastructure/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const maxCell = 48

func main() {
	_ = godotenv.Load()
	dbPath := flag.String("db", os.Getenv("SIMULATE_BADGER_PATH"), "Path to the local backend Badger directory")
	table := flag.String("table", "", "Table to dump; empty lists the tables")
	changes := flag.Int("changes", 0, "Dump the latest N change events instead of a table")
	flag.Parse()
	if *dbPath == "" {
		log.Fatal("missing -db or SIMULATE_BADGER_PATH")
	}

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()
	logger := logs.GetLoggerFromString("WARN")
	store := storage.NewStore(db, logger, nil)

	switch {
	case *changes > 0:
		rows, err := storage.NewChangeLog(db, logger).Recent(*changes)
		if err != nil {
			log.Fatal(err)
		}
		render([]string{"commit_at", "type", "table", "id"}, lo.Map(rows, func(r contract.Record, _ int) []string {
			return []string{r.String("commit_at"), r.String("type"), r.String("table"), r.String("id")}
		}))
	case *table == "":
		tables, err := store.Tables()
		if err != nil {
			log.Fatal(err)
		}
		render([]string{"table"}, lo.Map(tables, func(name string, _ int) []string { return []string{name} }))
	default:
		rows, err := store.Select(context.Background(), *table, nil, contract.Asc("created_at"))
		if err != nil {
			log.Fatal(err)
		}
		columns := columnsOf(rows)
		render(columns, lo.Map(rows, func(r contract.Record, _ int) []string {
			return lo.Map(columns, func(column string, _ int) string { return cell(r, column) })
		}))
	}
}

// columnsOf returns every column present in rows, id first.
func columnsOf(rows []contract.Record) []string {
	columns := lo.Uniq(lo.FlatMap(rows, func(r contract.Record, _ int) []string { return lo.Keys(r) }))
	slices.Sort(columns)
	if i := slices.Index(columns, "id"); i > 0 {
		columns = append([]string{"id"}, slices.Delete(columns, i, i+1)...)
	}
	return columns
}

func cell(r contract.Record, column string) string {
	if v, ok := r[column]; !ok || v == nil {
		return "∅"
	}
	value := strings.ReplaceAll(r.String(column), "\n", " ")
	if len([]rune(value)) > maxCell {
		value = string([]rune(value)[:maxCell]) + "…"
	}
	return value
}

func render(header []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.AppendBulk(rows)
	table.Render()
	fmt.Printf("%d row(s)\n", len(rows))
}

// openDB opens the directory read-only, even while a simulation holds the lock.
func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
