package swarmd

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// SolverServiceName is the fully qualified gRPC service name. Messages are
// google.protobuf.Struct documents carrying the same JSON shapes as the HTTP
// API.
const SolverServiceName = "swarm.v1.SolverService"

// SolverServiceServer is the server API for swarm.v1.SolverService.
type SolverServiceServer interface {
	// Solve runs a solver synchronously and returns the finished run.
	Solve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// SubmitRun admits a run for background execution.
	SubmitRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// StreamHistory sends one Struct per recorded round until the run is
	// terminal.
	StreamHistory(*structpb.Struct, grpc.ServerStream) error
}

type unaryMethod func(SolverServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SolverServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + SolverServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SolverServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func streamHistoryHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SolverServiceServer).StreamHistory(in, stream)
}

// SolverServiceDesc describes swarm.v1.SolverService for grpc.Server.
var SolverServiceDesc = grpc.ServiceDesc{
	ServiceName: SolverServiceName,
	HandlerType: (*SolverServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Solve", SolverServiceServer.Solve),
		unaryHandler("SubmitRun", SolverServiceServer.SubmitRun),
		unaryHandler("GetRun", SolverServiceServer.GetRun),
		unaryHandler("ListRuns", SolverServiceServer.ListRuns),
		unaryHandler("StopRun", SolverServiceServer.StopRun),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamHistory",
			Handler:       streamHistoryHandler,
			ServerStreams: true,
		},
	},
	Metadata: "swarm/v1/solver.proto",
}

// RegisterSolverServiceServer registers srv on s.
func RegisterSolverServiceServer(s grpc.ServiceRegistrar, srv SolverServiceServer) {
	s.RegisterService(&SolverServiceDesc, srv)
}

// SolverServiceClient is a client for swarm.v1.SolverService.
type SolverServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSolverServiceClient(cc grpc.ClientConnInterface) *SolverServiceClient {
	return &SolverServiceClient{cc: cc}
}

func (c *SolverServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+SolverServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SolverServiceClient) Solve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Solve", in, opts...)
}

func (c *SolverServiceClient) SubmitRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SubmitRun", in, opts...)
}

func (c *SolverServiceClient) GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetRun", in, opts...)
}

func (c *SolverServiceClient) ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListRuns", in, opts...)
}

func (c *SolverServiceClient) StopRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "StopRun", in, opts...)
}

// StreamHistory opens the history stream. Call RecvMsg with a
// *structpb.Struct until it returns io.EOF.
func (c *SolverServiceClient) StreamHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	stream, err := c.cc.NewStream(ctx, &SolverServiceDesc.Streams[0], "/"+SolverServiceName+"/StreamHistory", opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return stream, nil
}

// toStruct converts a JSON-shaped value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to build struct: %w", err)
	}
	return out, nil
}

// fromStruct decodes a Struct into v through its JSON form.
func fromStruct(in *structpb.Struct, v any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
