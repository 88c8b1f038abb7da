package grpcserver_test

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"jobboard/geo-service/internal/grpcserver"
	"jobboard/geo-service/internal/model"
	"jobboard/geo-service/internal/proximity"
	"jobboard/geo-service/internal/recommend"
	"jobboard/geo-service/internal/store"
)

func f(v float64) *float64 { return &v }

func dial(t *testing.T) *grpc.ClientConn {
	t.Helper()
	st := store.NewMemory(
		[]model.Job{
			{ID: "j1", Title: "Desenvolvedor Go", Status: "aberta", Requirements: "Go", Latitude: f(-23.5505), Longitude: f(-46.6333)},
			{ID: "j2", Title: "Analista", Status: "active", Location: "Salvador"},
		},
		[]model.User{{ID: "u1", Name: "Ana", Type: "candidato", Status: "ativo", Skills: []string{"Go"}, Location: "São Paulo"}},
	)
	srv := grpcserver.NewServer(proximity.NewService(st, nil, nil), recommend.NewService(st, nil), 50, 6)

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	grpcserver.Register(gs, srv)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func call(ctx context.Context, conn *grpc.ClientConn, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	err = conn.Invoke(ctx, "/"+grpcserver.ServiceName+"/"+method, in, out)
	return out, err
}

func TestNearbyJobs(t *testing.T) {
	conn := dial(t)
	out, err := call(context.Background(), conn, "NearbyJobs", map[string]any{"lat": -23.55, "lng": -46.63})
	if err != nil {
		t.Fatalf("NearbyJobs: %v", err)
	}
	results := out.GetFields()["results"].GetListValue().GetValues()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	job := results[0].GetStructValue().GetFields()["job"].GetStructValue()
	if id := job.GetFields()["id"].GetStringValue(); id != "j1" {
		t.Errorf("id = %q, want j1", id)
	}
}

func TestErrorMapping(t *testing.T) {
	conn := dial(t)
	ctx := context.Background()
	cases := []struct {
		name   string
		ctx    context.Context
		method string
		req    map[string]any
		want   codes.Code
	}{
		{"missing coordinates", ctx, "NearbyJobs", map[string]any{"lat": 1.0}, codes.InvalidArgument},
		{"out of range", ctx, "NearbyCandidates", map[string]any{"lat": 120.0, "lng": 0.0}, codes.InvalidArgument},
		{"string lat", ctx, "UpdateLocation", map[string]any{"id": "j1", "lat": "x", "lng": 1.0}, codes.InvalidArgument},
		{"not found", ctx, "UpdateLocation", map[string]any{"id": "nope", "lat": 1.0, "lng": 1.0}, codes.NotFound},
		{"no user metadata", ctx, "RecommendJobs", map[string]any{}, codes.Unauthenticated},
		{"unknown user", metadata.AppendToOutgoingContext(ctx, "x-user-id", "ghost"), "RecommendJobs", map[string]any{}, codes.NotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := call(c.ctx, conn, c.method, c.req)
			if got := status.Code(err); got != c.want {
				t.Errorf("code = %v, want %v (err %v)", got, c.want, err)
			}
		})
	}
}

func TestRecommendAndUpdate(t *testing.T) {
	conn := dial(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-user-id", "u1")

	out, err := call(ctx, conn, "RecommendJobs", map[string]any{"limit": 1.0})
	if err != nil {
		t.Fatalf("RecommendJobs: %v", err)
	}
	if n := len(out.GetFields()["results"].GetListValue().GetValues()); n != 1 {
		t.Errorf("got %d recommendations, want 1", n)
	}

	out, err = call(ctx, conn, "UpdateLocation", map[string]any{"id": "u1", "lat": -23.0, "lng": -46.0, "kind": "candidate"})
	if err != nil {
		t.Fatalf("UpdateLocation: %v", err)
	}
	if lat := out.GetFields()["latitude"].GetNumberValue(); lat != -23 {
		t.Errorf("latitude = %v, want -23", lat)
	}
}
