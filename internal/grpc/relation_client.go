package igrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RelationClient is the caller side of RelationInternal, published for
// sibling services that gate their content on friendship or blocks. This
// service never calls itself through it; only the loopback tests here do.
type RelationClient struct {
	conn *grpc.ClientConn
}

func NewRelationClient(addr string, opts ...grpc.DialOption) (*RelationClient, error) {
	if addr == "" {
		return nil, fmt.Errorf("relation gRPC address is required")
	}

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial relation gRPC: %w", err)
	}
	return &RelationClient{conn: conn}, nil
}

func (c *RelationClient) Close() error {
	return c.conn.Close()
}

func (c *RelationClient) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	return c.call(ctx, "AreFriends", userID, otherID)
}

func (c *RelationClient) IsBlocked(ctx context.Context, userID, otherID int64) (bool, error) {
	return c.call(ctx, "IsBlocked", userID, otherID)
}

func (c *RelationClient) call(ctx context.Context, method string, userID, otherID int64) (bool, error) {
	req, err := structpb.NewStruct(map[string]any{
		"user_id":  userID,
		"other_id": otherID,
	})
	if err != nil {
		return false, err
	}

	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}
