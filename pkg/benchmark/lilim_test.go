package benchmark

import (
	"strings"
	"testing"

	"github.com/lintang-b-s/Courierx/pkg/parameters"
	"github.com/lintang-b-s/Courierx/pkg/util"
	"github.com/stretchr/testify/require"
)

const smallInstance = `2	200	1
0	40	50	0	0	1236	0	0	0
1	45	68	10	0	1000	10	0	2
2	45	70	-10	0	1100	10	1	0
3	20	20	20	0	1000	10	0	4
4	25	25	-20	0	1100	10	3	0
`

func readSmall(t *testing.T) *LiLimReader {
	t.Helper()
	reader := NewLiLimReader()
	require.NoError(t, reader.Read(strings.NewReader(smallInstance)))
	return reader
}

func TestLiLimReaderParsesInstance(t *testing.T) {
	reader := readSmall(t)
	problem, err := reader.Problem(parameters.Default())
	require.NoError(t, err)

	require.Equal(t, 2, problem.NumberOfRequests())
	require.Equal(t, 2, problem.NumberOfVehicles())

	// depot clones take fresh ids above the max customer id
	vehicle1 := problem.GetVehicle(1)
	vehicle2 := problem.GetVehicle(2)
	require.Equal(t, 5, vehicle1.GetStartNodeId())
	require.Equal(t, 6, vehicle1.GetEndNodeId())
	require.Equal(t, 7, vehicle2.GetStartNodeId())
	require.Equal(t, 8, vehicle2.GetEndNodeId())

	depot := problem.GetNode(5)
	require.Equal(t, 40.0, depot.GetX())
	require.Equal(t, 50.0, depot.GetY())
	require.Equal(t, 1236.0, depot.GetLatestServiceTime())

	request := problem.GetRequest(1)
	require.Equal(t, 1, request.GetPickNodeId())
	require.Equal(t, 2, request.GetDeliveryNodeId())
	require.Equal(t, 10.0, request.GetRequireCapacity())
	require.True(t, request.CompatibleWith(1))
	require.True(t, request.CompatibleWith(2))
}

func TestLiLimReaderDistances(t *testing.T) {
	reader := readSmall(t)
	problem, err := reader.Problem(parameters.Default())
	require.NoError(t, err)

	// Euclidean, symmetric, rounded to 3 decimals
	require.Equal(t, 2.0, problem.GetDistance(1, 2))
	require.Equal(t, problem.GetDistance(3, 1), problem.GetDistance(1, 3))
	require.InDelta(t, 54.120, problem.GetDistance(1, 3), 1e-9)
	require.Zero(t, problem.GetDistance(5, 7))
	require.Zero(t, problem.GetDistance(1, 1))
}

func TestLiLimReaderRejectsBadDepotId(t *testing.T) {
	bad := strings.Replace(smallInstance, "0	40	50", "9	40	50", 1)
	reader := NewLiLimReader()
	err := reader.Read(strings.NewReader(bad))
	require.Error(t, err)
	require.True(t, util.HasCode(err, util.ErrData))
}

func TestLiLimReaderRejectsDemandMismatch(t *testing.T) {
	bad := strings.Replace(smallInstance, "2	45	70	-10", "2	45	70	-15", 1)
	reader := NewLiLimReader()
	err := reader.Read(strings.NewReader(bad))
	require.Error(t, err)
	require.True(t, util.HasCode(err, util.ErrData))
}

func TestLiLimReaderRejectsUnknownDeliveryNode(t *testing.T) {
	bad := strings.Replace(smallInstance, "1	45	68	10	0	1000	10	0	2", "1	45	68	10	0	1000	10	0	9", 1)
	reader := NewLiLimReader()
	err := reader.Read(strings.NewReader(bad))
	require.Error(t, err)
}

func TestLiLimReaderRejectsShortLines(t *testing.T) {
	reader := NewLiLimReader()
	err := reader.Read(strings.NewReader("1	200\n0	40	50	0	0	1236	0	0	0\n"))
	require.Error(t, err)

	reader = NewLiLimReader()
	err = reader.Read(strings.NewReader(smallInstance + "5	1	2	3\n"))
	require.Error(t, err)
}

func TestLiLimReaderMissingFile(t *testing.T) {
	reader := NewLiLimReader()
	require.Error(t, reader.ReadFile("/nonexistent/lc101.txt"))
}
