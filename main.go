// main holds the entry logic for the repostat CLI.
package main

import (
	"fmt"
	"os"

	"github.com/evamaxfield/repo-statistics/cmd"
	"github.com/evamaxfield/repo-statistics/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()

	err := cmd.Execute()
	if profErr := cmd.StopProfiling(); profErr != nil {
		fmt.Println("⚠️ ", profErr)
	}
	if err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}
