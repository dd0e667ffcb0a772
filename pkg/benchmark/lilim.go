package benchmark

import (
	"bufio"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/parameters"
	"github.com/lintang-b-s/Courierx/pkg/util"
)

// LiLimReader parses Li & Lim PDPTW benchmark files. The first line holds
// vehicleCount, capacity and speed; the second the depot (id 0); every
// further line one customer node. A customer with positive demand and a
// non-zero delivery index identifies a pickup/delivery request.
type LiLimReader struct {
	vehicleCount    int
	vehicleCapacity float64
	vehicleSpeed    float64

	depot     liLimNode
	customers map[int]liLimNode
}

type liLimNode struct {
	id            int
	x             float64
	y             float64
	demand        float64
	earliestTime  float64
	latestTime    float64
	serviceTime   float64
	pickupIndex   int
	deliveryIndex int
}

func NewLiLimReader() *LiLimReader {
	return &LiLimReader{customers: make(map[int]liLimNode)}
}

// ReadFile loads a benchmark file; a .bz2 suffix switches to the
// compressed-archive path the published data sets ship in.
func (r *LiLimReader) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return util.WrapErrorf(err, util.ErrData, "cannot open benchmark file %s", path)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".bz2") {
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			return util.WrapErrorf(err, util.ErrData, "cannot open bzip2 benchmark file %s", path)
		}
		defer bz.Close()
		reader = bz
	}
	return r.Read(reader)
}

// Read parses the benchmark text.
func (r *LiLimReader) Read(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)

	lines := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return util.WrapErrorf(err, util.ErrData, "cannot read benchmark data")
	}
	if len(lines) < 3 {
		return util.WrapErrorf(nil, util.ErrData, "benchmark file needs at least 3 lines, got %d", len(lines))
	}

	if err := r.parseHeader(lines[0]); err != nil {
		return err
	}

	depot, err := parseNodeLine(lines[1])
	if err != nil {
		return err
	}
	if depot.id != 0 {
		return util.WrapErrorf(nil, util.ErrData, "depot node id must be 0, got %d", depot.id)
	}
	r.depot = depot

	for lineNum, line := range lines[2:] {
		node, err := parseNodeLine(line)
		if err != nil {
			return util.WrapErrorf(err, util.ErrData, "customer line %d is malformed", lineNum+3)
		}
		if node.id == 0 {
			return util.WrapErrorf(nil, util.ErrData, "customer line %d reuses the depot id 0", lineNum+3)
		}
		if _, exists := r.customers[node.id]; exists {
			return util.WrapErrorf(nil, util.ErrData, "customer node %d appears twice", node.id)
		}
		r.customers[node.id] = node
	}

	return r.validate()
}

func (r *LiLimReader) parseHeader(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return util.WrapErrorf(nil, util.ErrData, "header line needs 3 fields, got %d", len(fields))
	}
	vehicleCount, err := strconv.Atoi(fields[0])
	if err != nil {
		return util.WrapErrorf(err, util.ErrData, "invalid vehicle count %q", fields[0])
	}
	capacity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return util.WrapErrorf(err, util.ErrData, "invalid vehicle capacity %q", fields[1])
	}
	speed, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return util.WrapErrorf(err, util.ErrData, "invalid vehicle speed %q", fields[2])
	}
	if vehicleCount < 1 || capacity <= 0 {
		return util.WrapErrorf(nil, util.ErrData,
			"header needs at least one vehicle with positive capacity")
	}
	if speed <= 0 {
		// the published Li & Lim files carry a placeholder speed
		speed = 1.0
	}

	r.vehicleCount = vehicleCount
	r.vehicleCapacity = capacity
	r.vehicleSpeed = speed
	return nil
}

func parseNodeLine(line string) (liLimNode, error) {
	fields := strings.Fields(line)
	if len(fields) != 9 {
		return liLimNode{}, util.WrapErrorf(nil, util.ErrData, "node line needs 9 fields, got %d", len(fields))
	}

	ints := make([]int, 0, 3)
	for _, idx := range []int{0, 7, 8} {
		v, err := strconv.Atoi(fields[idx])
		if err != nil {
			return liLimNode{}, util.WrapErrorf(err, util.ErrData, "invalid integer field %q", fields[idx])
		}
		ints = append(ints, v)
	}
	floats := make([]float64, 0, 6)
	for _, idx := range []int{1, 2, 3, 4, 5, 6} {
		v, err := strconv.ParseFloat(fields[idx], 64)
		if err != nil {
			return liLimNode{}, util.WrapErrorf(err, util.ErrData, "invalid numeric field %q", fields[idx])
		}
		floats = append(floats, v)
	}

	return liLimNode{
		id:            ints[0],
		x:             floats[0],
		y:             floats[1],
		demand:        floats[2],
		earliestTime:  floats[3],
		latestTime:    floats[4],
		serviceTime:   floats[5],
		pickupIndex:   ints[1],
		deliveryIndex: ints[2],
	}, nil
}

// validate cross-checks every pickup against its paired delivery.
func (r *LiLimReader) validate() error {
	pickups, deliveries := 0, 0
	for _, node := range r.customers {
		if node.demand > 0 {
			pickups++
		} else if node.demand < 0 {
			deliveries++
		}
	}
	if pickups != deliveries {
		return util.WrapErrorf(nil, util.ErrData,
			"%d pickup nodes but %d delivery nodes", pickups, deliveries)
	}

	for _, node := range r.customers {
		if node.demand <= 0 {
			continue
		}
		if node.deliveryIndex == 0 {
			return util.WrapErrorf(nil, util.ErrData,
				"pickup node %d has no delivery index", node.id)
		}
		delivery, ok := r.customers[node.deliveryIndex]
		if !ok {
			return util.WrapErrorf(nil, util.ErrData,
				"pickup node %d points at unknown delivery node %d", node.id, node.deliveryIndex)
		}
		if util.Abs(node.demand) != util.Abs(delivery.demand) {
			return util.WrapErrorf(nil, util.ErrData,
				"pickup node %d demand %f does not match delivery node %d demand %f",
				node.id, node.demand, delivery.id, delivery.demand)
		}
	}
	return nil
}

func (r *LiLimReader) customerIds() []int {
	ids := make([]int, 0, len(r.customers))
	for id := range r.customers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Problem materializes the instance: every vehicle gets its own depot
// clone pair at fresh ids above the max customer id, distances are
// Euclidean rounded to 3 decimals, and all vehicles start compatible with
// all requests (homogeneous fleet).
func (r *LiLimReader) Problem(params *parameters.Parameters) (*datastructure.Problem, error) {
	problem := datastructure.NewProblem(params)

	customerIds := r.customerIds()
	maxCustomerId := 0
	for _, id := range customerIds {
		node := r.customers[id]
		if err := problem.AddNode(datastructure.NewNode(node.id, node.x, node.y,
			node.earliestTime, node.latestTime, node.serviceTime, node.demand)); err != nil {
			return nil, err
		}
		if id > maxCustomerId {
			maxCustomerId = id
		}
	}

	vehicleIds := make([]int, 0, r.vehicleCount)
	nextNodeId := maxCustomerId + 1
	for vehicleId := 1; vehicleId <= r.vehicleCount; vehicleId++ {
		startNodeId := nextNodeId
		endNodeId := nextNodeId + 1
		nextNodeId += 2

		for _, depotNodeId := range []int{startNodeId, endNodeId} {
			if err := problem.AddNode(datastructure.NewNode(depotNodeId, r.depot.x, r.depot.y,
				r.depot.earliestTime, r.depot.latestTime, r.depot.serviceTime, r.depot.demand)); err != nil {
				return nil, err
			}
		}
		if err := problem.AddVehicle(datastructure.NewVehicle(vehicleId,
			r.vehicleCapacity, r.vehicleSpeed, startNodeId, endNodeId)); err != nil {
			return nil, err
		}
		vehicleIds = append(vehicleIds, vehicleId)
	}

	allNodes := make([]int, 0, len(customerIds)+2*r.vehicleCount)
	allNodes = append(allNodes, customerIds...)
	for id := maxCustomerId + 1; id < nextNodeId; id++ {
		allNodes = append(allNodes, id)
	}
	for i := 0; i < len(allNodes); i++ {
		nodeA := problem.GetNode(allNodes[i])
		for j := i + 1; j < len(allNodes); j++ {
			nodeB := problem.GetNode(allNodes[j])
			dx := nodeB.GetX() - nodeA.GetX()
			dy := nodeB.GetY() - nodeA.GetY()
			distance := util.RoundFloat(math.Hypot(dx, dy), 3)
			problem.SetDistance(allNodes[i], allNodes[j], distance)
		}
	}

	requestId := 1
	for _, id := range customerIds {
		node := r.customers[id]
		if node.demand <= 0 || node.deliveryIndex == 0 {
			continue
		}
		if err := problem.AddRequest(datastructure.NewRequest(requestId,
			node.id, node.deliveryIndex, node.demand, vehicleIds)); err != nil {
			return nil, err
		}
		requestId++
	}

	return problem, nil
}
