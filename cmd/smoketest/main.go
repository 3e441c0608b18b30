// Command smoketest drives the full login/task/category flow against a
// running server through the client SDK. Useful as a quick end-to-end check
// after deployments.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jnavarro/taskboard/internal/client"
)

type logNavigator struct{}

func (logNavigator) NavigateTo(route string) {
	log.Printf("navigate -> %s", route)
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	flag.Parse()

	sessionPath := filepath.Join(os.TempDir(), "taskboard-smoketest-session.json")
	defer os.Remove(sessionPath)

	store, err := client.NewSessionStore(sessionPath)
	if err != nil {
		log.Fatalf("failed to create session store: %v", err)
	}

	c := client.New(*baseURL, store, logNavigator{})
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	email := fmt.Sprintf("smoke_%d@example.com", time.Now().UnixNano()%1000000)
	auth, err := c.Register(ctx, client.RegisterInput{
		Username: fmt.Sprintf("smoke_%d", time.Now().UnixNano()%1000000),
		Email:    email,
		Password: "smoketest123",
	})
	if err != nil {
		log.Fatalf("register failed: %v", err)
	}
	log.Printf("registered user %s, token expires in %ds", auth.User.Username, auth.ExpiresIn)

	if !store.IsValid() {
		log.Fatal("session should be valid after registration")
	}

	category, err := c.CreateCategory(ctx, client.CategoryRequest{Name: "Smoke", Color: "#00AA00"})
	if err != nil {
		log.Fatalf("create category failed: %v", err)
	}

	task, err := c.CreateTask(ctx, client.CreateTaskRequest{
		Title:      "Smoke test task",
		Priority:   "HIGH",
		CategoryID: &category.ID,
		Tags:       []string{"smoke"},
	})
	if err != nil {
		log.Fatalf("create task failed: %v", err)
	}
	log.Printf("created task %s", task.ID)

	status := "COMPLETED"
	if _, err := c.UpdateTask(ctx, task.ID, client.UpdateTaskRequest{Status: &status}); err != nil {
		log.Fatalf("update task failed: %v", err)
	}

	summary, err := c.TaskSummary(ctx)
	if err != nil {
		log.Fatalf("summary failed: %v", err)
	}
	log.Printf("summary: total=%d completed=%d", summary.Total, summary.Completed)

	if err := c.DeleteTask(ctx, task.ID); err != nil {
		log.Fatalf("delete task failed: %v", err)
	}
	if err := c.DeleteCategory(ctx, category.ID); err != nil {
		log.Fatalf("delete category failed: %v", err)
	}
	if err := c.Logout(ctx); err != nil {
		log.Fatalf("logout failed: %v", err)
	}
	if store.IsValid() {
		log.Fatal("session should be gone after logout")
	}

	log.Println("smoke test passed")
}
