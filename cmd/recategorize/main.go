// Command recategorize is a small operator console for moving invoices
// out of the Miscellaneous bucket into a real category.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"expensealert/internal/cli"
	"expensealert/internal/core"
	"expensealert/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ledger := cli.InitLedger(logger, cfg.SQLiteDBPath)
	defer ledger.Close()

	ctx := context.Background()
	reader := bufio.NewScanner(os.Stdin)

	for {
		misc, err := ledger.ListMiscellaneous(ctx)
		if err != nil {
			logger.Error("Failed to list miscellaneous invoices", log.FieldError, err)
			os.Exit(1)
		}
		if len(misc) == 0 {
			fmt.Println("No miscellaneous invoices left.")
			return
		}

		fmt.Printf("\n%d miscellaneous invoice(s):\n", len(misc))
		for _, si := range misc {
			fmt.Printf("  [%d] invoice %q  date %s  amount %.2f\n", si.ID, si.ExternalID, si.Date, si.Amount)
		}

		fmt.Print("\nRecord id to recategorize (empty to quit): ")
		if !reader.Scan() {
			return
		}
		input := strings.TrimSpace(reader.Text())
		if input == "" {
			return
		}
		id, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			fmt.Println("Not a record id, try again.")
			continue
		}

		fmt.Print("New category: ")
		if !reader.Scan() {
			return
		}
		category := strings.TrimSpace(reader.Text())
		if category == "" {
			fmt.Println("Category cannot be empty, try again.")
			continue
		}

		if err := ledger.Recategorize(ctx, id, category); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				fmt.Printf("No invoice with id %d.\n", id)
				continue
			}
			logger.Error("Failed to recategorize invoice", log.FieldError, err, log.FieldRecordID, id)
			os.Exit(1)
		}
		fmt.Printf("Invoice %d moved to %q.\n", id, category)
	}
}
