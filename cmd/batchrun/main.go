package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aryankumar/batchrun/internal/cli"
	"github.com/aryankumar/batchrun/internal/executor"
	"github.com/aryankumar/batchrun/internal/util"
)

func main() {
	// A process pool re-executes this binary to serve tasks
	if executor.IsWorkerProcess() {
		if err := executor.RunWorker(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "batchrun worker: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := util.SignalContext(context.Background(), nil)
	err := cli.Execute(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", util.FriendlyError(err))
		os.Exit(1)
	}
}
