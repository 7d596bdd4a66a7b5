package connect

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the server's procedures by name.
type Client struct {
	httpClient connect.HTTPClient
	baseURL    string
	token      string
	opts       []connect.ClientOption
}

// NewClient creates a client for the server at baseURL. token is sent as
// the admin token when non-empty.
func NewClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		opts:       opts,
	}
}

// Call invokes a unary procedure with in and decodes the response into out.
// in and out may be nil.
func (c *Client) Call(ctx context.Context, procedure string, in, out any) error {
	req, err := c.request(in)
	if err != nil {
		return err
	}
	client := connect.NewClient[structpb.Struct, structpb.Struct](c.httpClient, c.baseURL+procedure, c.opts...)
	resp, err := client.CallUnary(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return Decode(resp.Msg, out)
}

// Watch opens a server stream and calls fn for each message until the
// stream ends, ctx is cancelled or fn returns an error.
func (c *Client) Watch(ctx context.Context, procedure string, in any, fn func(*structpb.Struct) error) error {
	req, err := c.request(in)
	if err != nil {
		return err
	}
	client := connect.NewClient[structpb.Struct, structpb.Struct](c.httpClient, c.baseURL+procedure, c.opts...)
	stream, err := client.CallServerStream(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	for stream.Receive() {
		if err := fn(stream.Msg()); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil && connect.CodeOf(err) != connect.CodeCanceled {
		return err
	}
	return nil
}

func (c *Client) request(in any) (*connect.Request[structpb.Struct], error) {
	msg := &structpb.Struct{}
	if in != nil {
		var err error
		if msg, err = Encode(in); err != nil {
			return nil, err
		}
	}
	req := connect.NewRequest(msg)
	if c.token != "" {
		req.Header().Set(AdminTokenHeader, c.token)
	}
	return req, nil
}
