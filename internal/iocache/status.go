package iocache

import (
	"fmt"

	"github.com/evamaxfield/repo-statistics/schema"
)

// PrintCacheStatus prints activity cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintResultStatus prints result store status information.
func PrintResultStatus(status schema.ResultStoreStatus) {
	fmt.Printf("Results Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Metrics Rows: %d\n", status.MetricsRows)
	fmt.Printf("Error Rows: %d\n", status.ErrorRows)
	if status.MetricsRows > 0 {
		fmt.Printf("Last Processed: %s\n", status.LastProcessed.Format("2006-01-02 15:04:05"))
	}
}
