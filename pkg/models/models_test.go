package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRoomFloorAndKind(t *testing.T) {
	assert.Equal(t, 12, Room{Number: 1205}.Floor())
	assert.Equal(t, 3, Room{Number: 301}.Floor())

	assert.Equal(t, KindNormal, Room{Number: 301, Twin: true}.Kind())
	assert.Equal(t, KindEco, Room{Number: 301, Eco: true}.Kind())
	assert.Equal(t, KindEcoOut, Room{Number: 301, Eco: true, EcoOut: true}.Kind())
}

func TestTwinQuotaJSON(t *testing.T) {
	var hk struct {
		A TwinQuota `json:"a"`
		B TwinQuota `json:"b"`
		C TwinQuota `json:"c"`
		D TwinQuota `json:"d"`
		E TwinQuota `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 3, "b": "auto", "c": "2", "d": null, "e": -1}`), &hk))
	assert.Equal(t, FixedTwinQuota(3), hk.A)
	assert.True(t, hk.B.Auto)
	assert.Equal(t, 2, hk.C.Value)
	assert.True(t, hk.D.Auto)
	assert.True(t, hk.E.Auto)

	out, err := json.Marshal(Housekeeper{ID: 1, RoomQuota: 5, TwinQuota: AutoTwinQuota()})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"twin_quota":"auto"`)

	out, err = json.Marshal(Housekeeper{ID: 1, RoomQuota: 5, TwinQuota: FixedTwinQuota(2)})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"twin_quota":2`)

	var bad TwinQuota
	assert.Error(t, json.Unmarshal([]byte(`"many"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestTwinQuotaYAML(t *testing.T) {
	var roster []Housekeeper
	doc := `
- id: 1
  room_quota: 10
  twin_quota: 2
- id: 2
  room_quota: 8
  twin_quota: auto
  has_bath: true
- id: 3
  room_quota: 8
  twin_quota: ~
`
	require.NoError(t, yaml.Unmarshal([]byte(doc), &roster))
	require.Len(t, roster, 3)
	assert.Equal(t, FixedTwinQuota(2), roster[0].TwinQuota)
	assert.True(t, roster[1].TwinQuota.Auto)
	assert.True(t, roster[1].HasBath)
	assert.True(t, roster[2].TwinQuota.Auto)
	assert.Equal(t, "auto", roster[2].TwinQuota.String())
	assert.Equal(t, "2", roster[0].TwinQuota.String())
}

func TestParseTwinQuota(t *testing.T) {
	for in, want := range map[string]TwinQuota{
		"":     AutoTwinQuota(),
		"AUTO": AutoTwinQuota(),
		" 4 ":  FixedTwinQuota(4),
		"-1":   AutoTwinQuota(),
		"0":    FixedTwinQuota(0),
	} {
		got, err := ParseTwinQuota(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseTwinQuota("two")
	assert.Error(t, err)
}

func TestBuildRooms(t *testing.T) {
	rooms := BuildRooms([]int{301, 302}, []int{302, 401}, []int{303}, []int{303, 402})

	byNumber := make(map[int]Room)
	for _, r := range rooms {
		byNumber[r.Number] = r
	}
	assert.Len(t, rooms, 5)
	assert.Equal(t, Room{Number: 301}, byNumber[301])
	assert.Equal(t, Room{Number: 302, Twin: true}, byNumber[302])
	assert.Equal(t, Room{Number: 303, Eco: true, EcoOut: true}, byNumber[303])
	assert.Equal(t, Room{Number: 401, Twin: true}, byNumber[401])
	assert.Equal(t, KindEcoOut, byNumber[402].Kind())
}

func TestApplyDefaults(t *testing.T) {
	var in AllocationInput
	in.ApplyDefaults()
	assert.Equal(t, DefaultDurations(), in.Durations)

	custom := AllocationInput{Durations: Durations{Single: 30, Twin: 35}}
	custom.ApplyDefaults()
	assert.Equal(t, Durations{Single: 30, Twin: 35}, custom.Durations)
}

func TestValidate(t *testing.T) {
	valid := func() *AllocationInput {
		return &AllocationInput{
			Rooms:        BuildRooms([]int{301, 302}, nil, nil, nil),
			Housekeepers: []Housekeeper{{ID: 1, RoomQuota: 2, TwinQuota: AutoTwinQuota()}},
		}
	}
	require.NoError(t, Validate(valid()))

	noRooms := valid()
	noRooms.Rooms = nil
	assert.Error(t, Validate(noRooms))

	zeroRoom := valid()
	zeroRoom.Rooms[0].Number = 0
	assert.Error(t, Validate(zeroRoom))

	negative := valid()
	negative.Durations.Twin = -5
	assert.Error(t, Validate(negative))

	tooMany := valid()
	tooMany.Attempts = 1000
	assert.Error(t, Validate(tooMany))

	dupRoom := valid()
	dupRoom.Rooms = append(dupRoom.Rooms, Room{Number: 301})
	err := Validate(dupRoom)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate room number: 301")

	dupID := valid()
	dupID.Housekeepers = append(dupID.Housekeepers, Housekeeper{ID: 1})
	err = Validate(dupID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate housekeeper id: 1")
}
