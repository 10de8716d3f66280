package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/models"
)

var csvFixture = map[string]string{
	"concept_table.csv": `concept_id,concept_name,subject,level,prerequisite_id
C1,Addition,Math,1,
C2,Fractions,Math,2,C1
C3,Geometry,Math,1,
`,
	"question_table.csv": `question_id,concept_id,difficulty
Q1,C1,Easy
Q2,C1,Easy
Q3,C2,Hard
Q4,C3,Medium
`,
	"student_table.csv": `student_id,learning_style,avg_accuracy,avg_response_time
S1,Visual,0.5,40
S2,Auditory,0.9,20
S3,Reading,0.2,90
S4,Kinesthetic,0.6,55
S5,Visual,0.7,35
`,
	"learning_resources_full.csv": `resource_id,concept_id,concept_name,resource_name,resource_type,difficulty,duration_minutes,rating,view_count,url
R1,C1,Addition,Adding Up,Video,Beginner,15,4.5,100,http://example.com/r1
R2,C2,Fractions,Fraction Basics,Exercise,Beginner,20,4.0,50,http://example.com/r2
R3,C3,Geometry,Shapes,Article,Advanced,30,4.8,10,http://example.com/r3
`,
	"student_performance.csv": `student_id,question_id,correct,time_taken,attempts
S1,Q1,1,30,1
S1,Q2,0,40,1
S1,Q3,0,90,2
S1,Q4,1,20,1
S2,Q1,1,20,1
S2,Q3,1,25,1
S2,Q4,1,15,1
S3,Q1,0,80,3
S3,Q3,0,120,3
S3,Q4,0,90,2
S4,Q2,1,50,1
S4,Q3,0,70,2
S4,Q4,1,65,1
S5,Q1,1,35,1
S5,Q3,1,45,1
S5,Q4,0,55,2
`,
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LEARNPATH_CONFIG", filepath.Join(dir, "absent.yaml"))
	t.Setenv("LEARNPATH_DB_TYPE", "sqlite")
	t.Setenv("LEARNPATH_SQLITE_PATH", filepath.Join(dir, "db", "learnpath.db"))
	t.Setenv("LEARNPATH_LOG_LEVEL", "error")

	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	for name, body := range csvFixture {
		require.NoError(t, os.WriteFile(filepath.Join(data, name), []byte(body), 0o644))
	}
	return data
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd("test")
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "import", "plan", "clusters"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, NewImportCmd().Flags().Lookup("append"))
	assert.NotNil(t, NewClustersCmd().Flags().Lookup("json"))
}

func TestMigrate(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema up to date (sqlite)")
}

func TestImportPlanAndClusters(t *testing.T) {
	data := setupEnv(t)

	out, err := run(t, "import", data)
	require.NoError(t, err)
	assert.Contains(t, out, "students:     5")
	assert.Contains(t, out, "performance:  16")
	assert.NotContains(t, out, "skipped")

	out, err = run(t, "plan", "S1")
	require.NoError(t, err)
	var plan models.LearningPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, "S1", plan.StudentID)
	assert.Equal(t, "Visual", plan.LearningStyle)
	assert.Len(t, plan.StudySchedule, 7)

	out, err = run(t, "clusters")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "LABEL"))

	out, err = run(t, "clusters", "--json")
	require.NoError(t, err)
	var stats []models.ClusterStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Len(t, stats, 4)
}

func TestPlanUnknownStudent(t *testing.T) {
	data := setupEnv(t)
	_, err := run(t, "import", data)
	require.NoError(t, err)

	_, err = run(t, "plan", "S404")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestImportRequiresDirectory(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "import")
	assert.Error(t, err)

	_, err = run(t, "import", filepath.Join(t.TempDir(), "missing"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
