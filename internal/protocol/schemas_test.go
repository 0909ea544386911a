package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	commandSchema := compile("command.schema.json")
	stateSchema := compile("state.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "player_name":"p1",
	  "team":0
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "player_id":"P1",
	  "team":0,
	  "world_params":{
	    "tick_rate_hz":30,
	    "world_w":4000,
	    "world_h":3000,
	    "tuning_digest":"deadbeef"
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var command any
	_ = json.Unmarshal([]byte(`{
	  "type":"COMMAND",
	  "protocol_version":"1.0",
	  "commands":[
	    {"id":"c1","kind":"MOVE","unit_ids":["U000001"],"point":[120.5,80]},
	    {"id":"c2","kind":"GATHER","unit_ids":["U000001"],"target_id":"R000003"},
	    {"id":"c3","kind":"PATROL","unit_ids":["U000002"],"point":[0,0],"point_b":[100,0]},
	    {"id":"c4","kind":"PRODUCE","building_id":"B000001","unit_type":"WORKER"},
	    {"id":"c5","kind":"BUILD","building_type":"TURRET","point":[300,300]},
	    {"id":"c6","kind":"STOP","unit_ids":["U000001","U000002"]}
	  ]
	}`), &command)
	validate(commandSchema, command)

	var state any
	_ = json.Unmarshal([]byte(`{
	  "type":"STATE",
	  "protocol_version":"1.0",
	  "tick":42,
	  "stockpiles":{"0":200,"1":125},
	  "game_over":false,
	  "winner":-1,
	  "entities":[
	    {"id":"U000001","kind":"UNIT","entity_type":"WORKER","team":0,
	     "pos":[10.5,20.25],"size":15,"health":50,"max_health":50,
	     "behavior":"GATHER","carrying":10},
	    {"id":"B000001","kind":"BUILDING","entity_type":"COMMAND_CENTER","team":0,
	     "pos":[0,0],"size":80,"health":1000,"max_health":1000,
	     "queue_len":2,"rally":[150,0]},
	    {"id":"R000001","kind":"RESOURCE","entity_type":"MINERAL","team":-1,
	     "pos":[100,0],"size":30,"amount":490}
	  ],
	  "events":[
	    {"type":"COMMAND_REJECTED","id":"c9","code":"E_NO_RESOURCE"},
	    {"type":"ENTITY_DIED","id":"U000007"}
	  ],
	  "digest":"deadbeef"
	}`), &state)
	validate(stateSchema, state)
}
