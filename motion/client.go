package motion

import (
	"context"

	"roboone/core"
)

// Client calls the motion primitives from another task by message, so the
// actuator stays owned by the motion task. A primitive fails if the motion
// queue is full or ctx ends before the reply.
type Client struct {
	queue *core.Queue[Request]
}

// NewClient creates a Client on the motion queue
func NewClient(queue *core.Queue[Request]) *Client {
	return &Client{queue: queue}
}

func (c *Client) call(ctx context.Context, req Request) bool {
	req.Reply = make(chan bool, 1)
	if err := c.queue.TrySend(req); err != nil {
		core.DebugPrintln("[MOTION] client: " + err.Error())
		return false
	}
	select {
	case ok := <-req.Reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

// Stop brakes the motors
func (c *Client) Stop(ctx context.Context) bool {
	return c.call(ctx, Request{Op: OpStop})
}

// Move runs the motors at speed with trims
func (c *Client) Move(ctx context.Context, speed, trimLeft, trimRight int) bool {
	return c.call(ctx, Request{Op: OpMove, Speed: speed, TrimLeft: trimLeft, TrimRight: trimRight})
}

// Turn rotates by degrees, positive is right
func (c *Client) Turn(ctx context.Context, degrees int) bool {
	return c.call(ctx, Request{Op: OpTurn, Degrees: degrees})
}

// Idle tells the motion task that homing has let go of the drivetrain
func (c *Client) Idle(ctx context.Context) bool {
	return c.call(ctx, Request{Op: OpHomingDone})
}
