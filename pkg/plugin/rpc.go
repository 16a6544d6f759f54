package plugin

import (
	"context"
	"encoding/json"
	"net/rpc"
	"sync"
	"time"

	"github.com/hashicorp/go-plugin"
)

// HostBridgeRPC implements the go-plugin Plugin interface for host bridges.
// A host serves its bridge and, optionally, its animation delegate through
// one plugin.
type HostBridgeRPC struct {
	plugin.Plugin
	Impl     HostBridge
	Delegate AnimationDelegate
}

// Server returns an RPC server for this plugin.
func (p *HostBridgeRPC) Server(*plugin.MuxBroker) (any, error) {
	return &HostBridgeRPCServer{Impl: p.Impl, Delegate: p.Delegate}, nil
}

// Client returns an RPC client for this plugin.
func (p *HostBridgeRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &HostBridgeRPCClient{client: c}, nil
}

// CallResult carries an error across the RPC boundary without losing its code.
type CallResult struct {
	Code    ErrorCode
	Message string
}

func resultOf(err error) CallResult {
	if err == nil {
		return CallResult{}
	}
	if e, ok := err.(*Error); ok {
		return CallResult{Code: e.Code, Message: e.Message}
	}
	return CallResult{Code: CodeOf(err), Message: err.Error()}
}

// Err rebuilds the error, or returns nil for a successful result.
func (r CallResult) Err() error {
	switch {
	case r.Code != "":
		return &Error{Code: r.Code, Message: r.Message}
	case r.Message != "":
		return &RPCError{Message: r.Message}
	default:
		return nil
	}
}

// BuildViewReply is the response to BuildView.
type BuildViewReply struct {
	View   ViewHandle
	Result CallResult
}

// AttachArgs are the arguments to Attach.
type AttachArgs struct {
	View  ViewHandle
	Alpha float64
}

// AnimateArgs is the wire form of an AnimationEvent. Options travel as JSON
// since gob cannot carry arbitrary nested maps.
type AnimateArgs struct {
	Type              EventType
	Source            string
	View              ViewHandle
	AnimationDuration time.Duration
	Options           []byte
}

// HostBridgeRPCServer is the RPC server implementation for host bridges.
type HostBridgeRPCServer struct {
	Impl     HostBridge
	Delegate AnimationDelegate
}

// BuildView implements the RPC method for building a splash view.
func (s *HostBridgeRPCServer) BuildView(req ViewRequest, resp *BuildViewReply) error {
	view, err := s.Impl.BuildView(context.Background(), req)
	resp.View = view
	resp.Result = resultOf(err)
	return nil
}

// Attach implements the RPC method for attaching a view.
func (s *HostBridgeRPCServer) Attach(args AttachArgs, resp *CallResult) error {
	*resp = resultOf(s.Impl.Attach(context.Background(), args.View, args.Alpha))
	return nil
}

// Detach implements the RPC method for detaching a view.
func (s *HostBridgeRPCServer) Detach(view ViewHandle, resp *CallResult) error {
	*resp = resultOf(s.Impl.Detach(context.Background(), view))
	return nil
}

// Fade implements the RPC method for running a fade. It returns when the fade completes.
func (s *HostBridgeRPCServer) Fade(req FadeRequest, resp *CallResult) error {
	*resp = resultOf(s.Impl.Fade(context.Background(), req))
	return nil
}

// HasAnimationDelegate reports whether the host registered an animation delegate.
func (s *HostBridgeRPCServer) HasAnimationDelegate(_ any, resp *bool) error {
	*resp = s.Delegate != nil
	return nil
}

// AnimateSplash runs the host's animation delegate and waits for it to call
// Done or Fail.
func (s *HostBridgeRPCServer) AnimateSplash(args AnimateArgs, resp *CallResult) error {
	if s.Delegate == nil {
		*resp = CallResult{Code: CodeAnimateMethodNotFound, Message: "host has no animation delegate"}
		return nil
	}

	event := AnimationEvent{
		Type:              args.Type,
		Source:            args.Source,
		View:              args.View,
		AnimationDuration: args.AnimationDuration,
	}
	if len(args.Options) > 0 {
		if err := json.Unmarshal(args.Options, &event.Options); err != nil {
			return err
		}
	}

	result := make(chan CallResult, 1)
	var once sync.Once
	settle := func(r CallResult) {
		once.Do(func() { result <- r })
	}

	s.Delegate.AnimateSplash(context.Background(), event, AnimationCallbacks{
		Done: func() { settle(CallResult{}) },
		Fail: func(message string, code ErrorCode) {
			if code == "" {
				code = CodeAnimateMethodFailed
			}
			settle(CallResult{Code: code, Message: message})
		},
	})

	*resp = <-result
	return nil
}

// HostBridgeRPCClient is the RPC client implementation for host bridges.
type HostBridgeRPCClient struct {
	client *rpc.Client
}

// call issues an RPC and stops waiting when ctx is done. The remote call is
// not cancelled.
func call(ctx context.Context, client *rpc.Client, method string, args, reply any) error {
	pending := client.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-pending.Done:
		return pending.Error
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BuildView calls the remote BuildView method.
func (c *HostBridgeRPCClient) BuildView(ctx context.Context, req ViewRequest) (ViewHandle, error) {
	var resp BuildViewReply
	if err := call(ctx, c.client, "Plugin.BuildView", req, &resp); err != nil {
		return "", err
	}
	if err := resp.Result.Err(); err != nil {
		return "", err
	}
	return resp.View, nil
}

// Attach calls the remote Attach method.
func (c *HostBridgeRPCClient) Attach(ctx context.Context, view ViewHandle, alpha float64) error {
	var resp CallResult
	if err := call(ctx, c.client, "Plugin.Attach", AttachArgs{View: view, Alpha: alpha}, &resp); err != nil {
		return err
	}
	return resp.Err()
}

// Detach calls the remote Detach method.
func (c *HostBridgeRPCClient) Detach(ctx context.Context, view ViewHandle) error {
	var resp CallResult
	if err := call(ctx, c.client, "Plugin.Detach", view, &resp); err != nil {
		return err
	}
	return resp.Err()
}

// Fade calls the remote Fade method.
func (c *HostBridgeRPCClient) Fade(ctx context.Context, req FadeRequest) error {
	var resp CallResult
	if err := call(ctx, c.client, "Plugin.Fade", req, &resp); err != nil {
		return err
	}
	return resp.Err()
}

// Delegate returns the host's animation delegate, or nil if the host did not
// register one.
func (c *HostBridgeRPCClient) Delegate(ctx context.Context) (AnimationDelegate, error) {
	var has bool
	if err := call(ctx, c.client, "Plugin.HasAnimationDelegate", new(any), &has); err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return &AnimationDelegateRPCClient{client: c.client}, nil
}

// AnimationDelegateRPCClient forwards animations to a host's delegate.
type AnimationDelegateRPCClient struct {
	client *rpc.Client
}

// AnimateSplash calls the remote delegate and reports its outcome through callbacks.
func (c *AnimationDelegateRPCClient) AnimateSplash(ctx context.Context, event AnimationEvent, callbacks AnimationCallbacks) {
	args := AnimateArgs{
		Type:              event.Type,
		Source:            event.Source,
		View:              event.View,
		AnimationDuration: event.AnimationDuration,
	}
	if len(event.Options) > 0 {
		data, err := json.Marshal(event.Options)
		if err != nil {
			callbacks.Fail("failed to encode animation options: "+err.Error(), CodeAnimateMethodFailed)
			return
		}
		args.Options = data
	}

	var resp CallResult
	if err := call(ctx, c.client, "Plugin.AnimateSplash", args, &resp); err != nil {
		callbacks.Fail(err.Error(), CodeAnimateMethodFailed)
		return
	}
	if resp.Code != "" || resp.Message != "" {
		code := resp.Code
		if code == "" {
			code = CodeAnimateMethodFailed
		}
		callbacks.Fail(resp.Message, code)
		return
	}
	callbacks.Done()
}
