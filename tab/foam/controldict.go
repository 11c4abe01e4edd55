package foam

import (
	"bytes"
	"os"
)

// controlDictBody is the static run-control file the solver expects under
// system/. Its content is unrelated to the table itself and exists only
// so the artifact passes the solver's directory checks.
const controlDictBody = `
application     none;

startFrom       startTime;

startTime       0;

stopAt          endTime;

endTime         1;

deltaT          1;

writeControl    timeStep;

writeInterval   1;

purgeWrite      0;

writeFormat     ascii;

writePrecision  6;

writeCompression off;

timeFormat      general;

timePrecision   6;

runTimeModifiable true;
`

// WriteControlDict writes the fixed solver-compatibility controlDict at
// path.
func WriteControlDict(path string) error {
	var b bytes.Buffer
	writeFileHeader(&b, "dictionary", FormatASCII, path)
	b.WriteString(controlDictBody)
	b.WriteString("\n" + fileFooter + "\n")
	return os.WriteFile(path, b.Bytes(), 0o644)
}
