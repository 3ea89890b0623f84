package rtde

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testRecipeXML = `<?xml version="1.0"?>
<rtde_config>
	<recipe key="state">
		<field name="actual_q" type="VECTOR6D"/>
		<field name="actual_qd" type="VECTOR6D"/>
		<field name="target_q" type="VECTOR6D"/>
		<field name="robot_mode" type="INT32"/>
		<field name="safety_mode" type="INT32"/>
	</recipe>
	<recipe key="setp">
		<field name="input_double_register_0" type="DOUBLE"/>
		<field name="input_double_register_1" type="DOUBLE"/>
		<field name="input_double_register_2" type="DOUBLE"/>
		<field name="input_double_register_3" type="DOUBLE"/>
		<field name="input_double_register_4" type="DOUBLE"/>
		<field name="input_double_register_5" type="DOUBLE"/>
	</recipe>
</rtde_config>`

func TestParseConfig(t *testing.T) {
	require := require.New(t)

	cfg, err := ParseConfig(strings.NewReader(testRecipeXML))
	require.NoError(err)
	require.Equal([]string{"state", "setp"}, cfg.Keys())

	state, err := cfg.Recipe("state")
	require.NoError(err)
	require.Equal("state", state.Key)
	require.Equal([]string{"actual_q", "actual_qd", "target_q", "robot_mode", "safety_mode"}, state.Names)
	require.Equal(FieldTypeVector6D, state.Types[0])
	require.Equal(FieldTypeInt32, state.Types[3])

	setp, err := cfg.Recipe("setp")
	require.NoError(err)
	require.Len(setp.Names, JointCount)
	for _, ft := range setp.Types {
		require.Equal(FieldTypeDouble, ft)
	}

	_, err = cfg.Recipe("watchdog")
	require.ErrorIs(err, ErrRecipeNotFound)
}

func TestParseConfigErrors(t *testing.T) {
	require := require.New(t)

	t.Run("Unknown Field Type", func(t *testing.T) {
		xml := `<rtde_config><recipe key="state"><field name="actual_q" type="VECTOR9D"/></recipe></rtde_config>`
		_, err := ParseConfig(strings.NewReader(xml))
		require.ErrorIs(err, ErrUnknownFieldType)
	})

	t.Run("Empty Recipe", func(t *testing.T) {
		xml := `<rtde_config><recipe key="state"></recipe></rtde_config>`
		_, err := ParseConfig(strings.NewReader(xml))
		require.ErrorIs(err, ErrEmptyRecipe)
	})

	t.Run("Malformed XML", func(t *testing.T) {
		_, err := ParseConfig(strings.NewReader("<rtde_config><recipe"))
		require.Error(err)
	})
}

func TestParseFieldType(t *testing.T) {
	require := require.New(t)

	ft, err := ParseFieldType("double")
	require.NoError(err)
	require.Equal(FieldTypeDouble, ft)

	ft, err = ParseFieldType(" VECTOR6D ")
	require.NoError(err)
	require.Equal(FieldTypeVector6D, ft)

	_, err = ParseFieldType("FLOAT128")
	require.ErrorIs(err, ErrUnknownFieldType)

	require.Equal("DOUBLE", FieldTypeDouble.String())
	require.Equal("UNKNOWN", FieldTypeUnknown.String())
}

func TestDefaultRecipes(t *testing.T) {
	require := require.New(t)

	state := StateRecipe()
	require.NoError(state.Validate())
	require.Contains(state.Names, "actual_qd")

	setp := SetpointRecipe()
	require.NoError(setp.Validate())
	require.Len(setp.Names, JointCount)
	require.Equal("input_double_register_0", setp.Names[0])
	require.Equal("input_double_register_5", setp.Names[5])
}

func TestRecipeValidate(t *testing.T) {
	require := require.New(t)

	require.ErrorIs(Recipe{Key: "empty"}.Validate(), ErrEmptyRecipe)

	mismatched := Recipe{
		Key:   "bad",
		Names: []string{"a", "b"},
		Types: []FieldType{FieldTypeDouble},
	}
	require.ErrorIs(mismatched.Validate(), ErrEmptyRecipe)
}
