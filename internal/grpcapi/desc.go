// Package grpcapi exposes the simulator over gRPC.
//
// Messages are google.protobuf.Struct values so the service needs no
// generated code; field names match the HTTP API's query parameters.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "montyhall.v1.Simulator"

const (
	methodRunTrial = "/" + ServiceName + "/RunTrial"
	methodEstimate = "/" + ServiceName + "/Estimate"
	methodCompare  = "/" + ServiceName + "/Compare"
)

// SimulatorServer is the server API for montyhall.v1.Simulator.
type SimulatorServer interface {
	RunTrial(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Estimate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Compare(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterSimulatorServer attaches srv to s.
func RegisterSimulatorServer(s grpc.ServiceRegistrar, srv SimulatorServer) {
	s.RegisterService(&simulatorServiceDesc, srv)
}

var simulatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunTrial", Handler: unaryHandler(methodRunTrial, SimulatorServer.RunTrial)},
		{MethodName: "Estimate", Handler: unaryHandler(methodEstimate, SimulatorServer.Estimate)},
		{MethodName: "Compare", Handler: unaryHandler(methodCompare, SimulatorServer.Compare)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "montyhall/v1/simulator.proto",
}

type unaryMethod func(SimulatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SimulatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SimulatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SimulatorClient is the client API for montyhall.v1.Simulator.
type SimulatorClient struct {
	cc grpc.ClientConnInterface
}

func NewSimulatorClient(cc grpc.ClientConnInterface) *SimulatorClient {
	return &SimulatorClient{cc: cc}
}

func (c *SimulatorClient) RunTrial(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodRunTrial, in, opts)
}

func (c *SimulatorClient) Estimate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodEstimate, in, opts)
}

func (c *SimulatorClient) Compare(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodCompare, in, opts)
}

func (c *SimulatorClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
