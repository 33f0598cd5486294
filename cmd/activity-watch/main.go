// Activity watch - tails a tracker dashboard's status stream and prints
// each Working/Idle transition.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/activity-tracker/pkg/activity"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws/status", "Tracker status websocket URL")
	all := flag.Bool("all", false, "Print every frame, not only transitions")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("👀 Watching %s\n", *url)
	if err := watch(ctx, *url, newPrinter(os.Stdout, *all)); err != nil && ctx.Err() == nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Println("\n👋 Goodbye!")
}

func watch(ctx context.Context, url string, p *printer) error {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}
	defer ws.Close()

	go func() {
		<-ctx.Done()
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		ws.Close()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := p.handle(data); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
		}
	}
}

// frameStatus is the subset of a frame result the watcher needs.
type frameStatus struct {
	RunID     string             `json:"run_id"`
	Frame     int                `json:"frame"`
	Time      time.Time          `json:"time"`
	Detected  bool               `json:"detected"`
	Status    activity.Status    `json:"status"`
	IdleState activity.IdleState `json:"idle_state"`
	IdleFor   time.Duration      `json:"idle_for_ns"`
}

// printer writes one line per status change.
type printer struct {
	out   io.Writer
	all   bool
	seen  bool
	last  activity.Status
	state activity.IdleState
}

func newPrinter(out io.Writer, all bool) *printer {
	return &printer{out: out, all: all}
}

func (p *printer) handle(data []byte) error {
	var fs frameStatus
	if err := json.Unmarshal(data, &fs); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}

	changed := !p.seen || fs.Status != p.last || fs.IdleState != p.state
	p.seen, p.last, p.state = true, fs.Status, fs.IdleState
	if !changed && !p.all {
		return nil
	}

	icon := "💤"
	if fs.Status == activity.Working {
		icon = "🔨"
	}
	line := fmt.Sprintf("%s %s frame %d: %s", icon, fs.Time.Format("15:04:05"), fs.Frame, fs.Status)
	if fs.IdleState == activity.TimedOut {
		line += fmt.Sprintf(" (no movement for %s)", fs.IdleFor.Round(time.Second))
	}
	if !fs.Detected {
		line += " [no detection]"
	}
	fmt.Fprintln(p.out, line)
	return nil
}
