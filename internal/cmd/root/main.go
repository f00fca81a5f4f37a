package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"obdpoll/internal/displayer"
	"obdpoll/internal/obd"
	"obdpoll/internal/obd/mock"
	"obdpoll/internal/transport"
	"obdpoll/pkg/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func Run(cmd *cobra.Command, args []string) {
	var (
		tr    transport.Transport
		ports transport.Ports
	)
	if viper.GetBool("mock") {
		adapter := mock.New()
		tr, ports = adapter, adapter
	} else {
		tr = transport.NewSerial()
		ports = transport.NewHostPorts()
	}

	sup := obd.NewSupervisor(tr, ports, viper.GetInt("baud"), viper.GetDuration("timeout"))
	defer sup.Shutdown()

	poller := obd.NewPoller(sup)
	if err := poller.Start(context.Background()); err != nil {
		log.Fatal("failed to start poller", zap.Error(err))
	}
	defer poller.Stop()

	if viper.GetBool("no-tui") {
		runConsole(poller)
		return
	}

	d := displayer.New(poller)
	if err := d.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// runConsole prints each reading on every poll cycle until interrupted.
func runConsole(poller *obd.Poller) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Exiting...")
			return
		case <-ticker.C:
			for _, r := range poller.Readings() {
				fmt.Printf("PID: %s\n", r.PID)
				fmt.Printf("Raw Response: %s\n", r.Raw)
				if r.Err != nil {
					fmt.Printf("Error: %v\n", r.Err)
				} else {
					fmt.Printf("Value: %s\n", r.Value)
				}
			}
			for _, e := range poller.DTCs() {
				fmt.Printf("DTC: %s - %s\n", e.Code, e.Description)
			}
		}
	}
}
