// This file is part of gopherAdvance.
//
// gopherAdvance is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gopherAdvance is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with gopherAdvance.  If not, see <https://www.gnu.org/licenses/>.

package regression

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/database"
)

// Sentinal error returned by all functions in the regression package.
const RegressionError = "regression: %v"

// the directory the regression database lives in.
const regressionPath = ".gopheradvance"
const regressionDBFile = "regressionDB"

// Regressor represents the generic entry in the regression database.
type Regressor interface {
	database.Entry

	// perform the regression test for the regression type. the
	// newRegression flag indicates that the test is being run for the
	// first time and that the reference result should be recorded.
	//
	// message is the string that is to be printed during the regression.
	regress(newRegression bool, output io.Writer, message string) (bool, error)
}

// when starting a database session we need to register what entries we will
// find in the database.
func initDBSession(db *database.Session) error {
	return db.RegisterEntryType(digestEntryID, deserialiseDigestEntry)
}

func dbPath() (string, error) {
	if err := os.MkdirAll(regressionPath, 0755); err != nil {
		return "", curated.Errorf(RegressionError, err)
	}
	return filepath.Join(regressionPath, regressionDBFile), nil
}

// RegressList displays all entries in the database.
func RegressList(output io.Writer) error {
	p, err := dbPath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(p, database.ActivityCreating, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(false)

	return db.List(output)
}

// RegressDelete removes an entry from the regression database. The
// confirmation reader is consulted before anything is deleted; send "y" to
// proceed.
func RegressDelete(output io.Writer, confirmation io.Reader, key string) error {
	v, err := strconv.Atoi(key)
	if err != nil {
		return curated.Errorf(RegressionError, fmt.Sprintf("invalid key [%s]", key))
	}

	p, err := dbPath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(p, database.ActivityModifying, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(true)

	ent, err := db.Get(v)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "%s\ndelete? (y/n): ", ent)

	confirm := make([]byte, 32)
	_, err = confirmation.Read(confirm)
	if err != nil {
		return curated.Errorf(RegressionError, err)
	}

	if confirm[0] == 'y' || confirm[0] == 'Y' {
		err = db.Delete(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "deleted test #%s from regression database\n", key)
	}

	return nil
}

// RegressAdd adds a new regression test to the database. The test is run
// once to record the reference result.
func RegressAdd(output io.Writer, reg Regressor) error {
	p, err := dbPath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(p, database.ActivityCreating, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(true)

	msg := fmt.Sprintf("adding: %s", reg)
	ok, err := reg.regress(true, output, msg)
	if !ok || err != nil {
		return err
	}

	fmt.Fprintf(output, "\radded: %s\n", reg)

	return db.Add(reg)
}

// RegressRunTests runs the tests in the regression database. An empty
// filterKeys list means that every entry should be tested.
func RegressRunTests(output io.Writer, verbose bool, failOnError bool, filterKeys []string) error {
	p, err := dbPath()
	if err != nil {
		return err
	}

	db, err := database.StartSession(p, database.ActivityCreating, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(false)

	if db.NumEntries() == 0 {
		fmt.Fprintf(output, "regression database is empty\n")
		return nil
	}

	// make sure any supplied keys are valid before running anything
	keys := make([]int, 0, len(filterKeys))
	for _, k := range filterKeys {
		v, err := strconv.Atoi(k)
		if err != nil {
			return curated.Errorf(RegressionError, fmt.Sprintf("invalid key [%s]", k))
		}
		if _, err := db.Get(v); err != nil {
			return err
		}
		keys = append(keys, v)
	}
	sort.Ints(keys)

	numSucceed := 0
	numFail := 0
	numError := 0

	defer func() {
		fmt.Fprintf(output, "regression tests: %d succeed, %d fail", numSucceed, numFail)
		if numError > 0 {
			fmt.Fprintf(output, " [with errors]")
		}
		fmt.Fprintf(output, "\n")
	}()

	onSelect := func(ent database.Entry) error {
		reg, ok := ent.(Regressor)
		if !ok {
			return curated.Errorf(RegressionError, "database entry is not a regression test")
		}

		msg := fmt.Sprintf("running: %s", reg)
		ok, err := reg.regress(false, output, msg)

		if err != nil {
			numError++
			fmt.Fprintf(output, "\r* error: %s\n", reg)
			if verbose {
				fmt.Fprintf(output, "%s\n", err)
			}
			if failOnError {
				return err
			}
		} else if !ok {
			numFail++
			fmt.Fprintf(output, "\rfailure: %s\n", reg)
		} else {
			numSucceed++
			fmt.Fprintf(output, "\rsucceed: %s\n", reg)
		}

		return nil
	}

	_, err = db.SelectKeys(onSelect, keys...)

	return err
}
