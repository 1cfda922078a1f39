// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client_test

import (
	"context"
	"fmt"
	"log"
	"net/http/httptest"

	"github.com/go-a2a/a2aconnect"
	"github.com/go-a2a/a2aconnect/client"
	"github.com/go-a2a/a2aconnect/internal/agenttest"
)

func ExampleClient_SendTask() {
	srv := httptest.NewServer(agenttest.New())
	defer srv.Close()

	c, err := client.New(srv.URL)
	if err != nil {
		log.Fatal(err)
	}

	task, err := c.SendTask(context.Background(), a2a.TaskSendParams{
		ID:      "task123",
		Message: a2a.NewUserTextMessage("Hello, agent!"),
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Task ID: %s\n", task.ID)
	fmt.Printf("Task State: %s\n", task.Status.State)
	// Output:
	// Task ID: task123
	// Task State: completed
}

func ExampleClient_SendTaskSubscribe() {
	srv := httptest.NewServer(agenttest.New())
	defer srv.Close()

	c, err := client.New(srv.URL)
	if err != nil {
		log.Fatal(err)
	}

	stream, err := c.SendTaskSubscribe(context.Background(), a2a.TaskSendParams{
		ID:      "task456",
		Message: a2a.NewUserTextMessage("Hello, streaming agent!"),
	})
	if err != nil {
		log.Fatal(err)
	}

	for ev, err := range stream.All() {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s event for %s\n", ev.Kind, ev.TaskID())
		if ev.IsFinal() {
			break
		}
	}
	// Output:
	// status event for task456
	// artifact event for task456
	// status event for task456
}

func ExampleClient_AgentCard() {
	srv := httptest.NewServer(agenttest.New(agenttest.WithoutWellKnown()))
	defer srv.Close()

	c, err := client.New(srv.URL)
	if err != nil {
		log.Fatal(err)
	}

	card, err := c.AgentCard(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Agent: %s\n", card.Name)
	fmt.Printf("Streaming: %v\n", card.Capabilities.Supports(a2a.CapabilityStreaming))
	// Output:
	// Agent: Echo Agent
	// Streaming: true
}

func ExampleIsTaskNotFoundError() {
	srv := httptest.NewServer(agenttest.New())
	defer srv.Close()

	c, err := client.New(srv.URL)
	if err != nil {
		log.Fatal(err)
	}

	_, err = c.GetTask(context.Background(), a2a.TaskQueryParams{ID: "missing"})
	fmt.Println(client.IsTaskNotFoundError(err))
	fmt.Println(err)
	// Output:
	// true
	// Task not found (-32001)
}
