package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type unaryCall func(GeoServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GeoServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("NearbyJobs", GeoServiceServer.NearbyJobs),
		unary("NearbyCandidates", GeoServiceServer.NearbyCandidates),
		unary("RecommendJobs", GeoServiceServer.RecommendJobs),
		unary("UpdateLocation", GeoServiceServer.UpdateLocation),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "geo/v1/geo.proto",
}

func unary(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GeoServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(GeoServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}
