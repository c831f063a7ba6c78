package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bikeshare/internal/amqp"
	"bikeshare/internal/services"
)

var (
	enqueueURL string
	enqueueBy  string
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Queue a dataset import for the worker",
	Long:  `Publishes an import request on the AMQP exchange for bikeshare-worker to process.`,
	RunE:  runEnqueue,
}

func init() {
	enqueueCmd.Flags().StringVar(&enqueueURL, "url", "", "dataset CSV URL (default is DATASET_URL)")
	enqueueCmd.Flags().StringVar(&enqueueBy, "by", "", "requester recorded on the message (default is $USER)")
	rootCmd.AddCommand(enqueueCmd)
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	if appConfig.AMQPURL == "" {
		return errors.New("AMQP_URL is not set")
	}
	url := enqueueURL
	if url == "" {
		url = appConfig.DatasetURL
	}
	by := enqueueBy
	if by == "" {
		by = os.Getenv("USER")
	}

	client, err := amqp.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	defer client.Close()

	if err := services.NewImportService(nil, client).Enqueue(cmd.Context(), url, by); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Queued import of %s on %s/%s\n", url, appConfig.AMQPExchange, appConfig.AMQPQueue)
	return nil
}
