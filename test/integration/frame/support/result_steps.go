package support

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// RegisterResultSteps registers assertions on the last response.
func (testCtx *TestContext) RegisterResultSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the recognized text should be "([^"]*)"$`, testCtx.theRecognizedTextShouldBe)
	sc.Step(`^the response should have no result$`, testCtx.theResponseShouldHaveNoResult)
	sc.Step(`^the response should report the error "([^"]*)"$`, testCtx.theResponseShouldReportTheError)
	sc.Step(`^the confidence should be greater than ([0-9.]+)$`, testCtx.theConfidenceShouldBeGreaterThan)
	sc.Step(`^the result should not include a confidence$`, testCtx.theResultShouldNotIncludeAConfidence)
	sc.Step(`^the result should contain (\d+) blocks?$`, testCtx.theResultShouldContainBlocks)
	sc.Step(`^the winning variant should be "([^"]*)"$`, testCtx.theWinningVariantShouldBe)
	sc.Step(`^(\d+) variants? should have been tried$`, testCtx.variantsShouldHaveBeenTried)
	sc.Step(`^the recognizer should have been called (\d+) times?$`, testCtx.theRecognizerShouldHaveBeenCalled)
	sc.Step(`^the raw response should not contain "([^"]*)"$`, testCtx.theRawResponseShouldNotContain)
}

func (testCtx *TestContext) theResponseStatusShouldBe(status int) error {
	if testCtx.LastStatus != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, testCtx.LastStatus, testCtx.LastBody)
	}
	return nil
}

func (testCtx *TestContext) theRecognizedTextShouldBe(text string) error {
	if err := testCtx.requireResult(); err != nil {
		return err
	}
	if got := testCtx.LastResponse.Result.Text; got != text {
		return fmt.Errorf("expected text %q, got %q", text, got)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldHaveNoResult() error {
	if testCtx.LastResponse == nil {
		return errors.New("no response received")
	}
	if !testCtx.LastResponse.Success {
		return fmt.Errorf("expected a successful response, got error %q", testCtx.LastResponse.Error)
	}
	if testCtx.LastResponse.Result != nil {
		return fmt.Errorf("expected no result, got text %q", testCtx.LastResponse.Result.Text)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldReportTheError(message string) error {
	if testCtx.LastResponse == nil {
		return errors.New("no response received")
	}
	if testCtx.LastResponse.Success {
		return errors.New("expected a failed response")
	}
	if !strings.Contains(testCtx.LastResponse.Error, message) {
		return fmt.Errorf("expected error containing %q, got %q", message, testCtx.LastResponse.Error)
	}
	return nil
}

func (testCtx *TestContext) theConfidenceShouldBeGreaterThan(limit float64) error {
	if err := testCtx.requireResult(); err != nil {
		return err
	}
	c := testCtx.LastResponse.Result.Confidence
	if c == nil {
		return errors.New("result has no confidence")
	}
	if *c <= limit {
		return fmt.Errorf("expected confidence above %.2f, got %.4f", limit, *c)
	}
	return nil
}

func (testCtx *TestContext) theResultShouldNotIncludeAConfidence() error {
	if err := testCtx.requireResult(); err != nil {
		return err
	}
	if testCtx.LastResponse.Result.Confidence != nil {
		return fmt.Errorf("unexpected confidence %.4f", *testCtx.LastResponse.Result.Confidence)
	}
	return nil
}

func (testCtx *TestContext) theResultShouldContainBlocks(n int) error {
	if err := testCtx.requireResult(); err != nil {
		return err
	}
	if got := len(testCtx.LastResponse.Result.Blocks); got != n {
		return fmt.Errorf("expected %d blocks, got %d", n, got)
	}
	return nil
}

func (testCtx *TestContext) theWinningVariantShouldBe(kind string) error {
	if testCtx.LastResponse == nil {
		return errors.New("no response received")
	}
	if testCtx.LastResponse.Variant != kind {
		return fmt.Errorf("expected variant %q, got %q", kind, testCtx.LastResponse.Variant)
	}
	return nil
}

func (testCtx *TestContext) variantsShouldHaveBeenTried(n int) error {
	if testCtx.LastResponse == nil {
		return errors.New("no response received")
	}
	if testCtx.LastResponse.Attempts != n {
		return fmt.Errorf("expected %d attempts, got %d", n, testCtx.LastResponse.Attempts)
	}
	return nil
}

func (testCtx *TestContext) theRecognizerShouldHaveBeenCalled(n int) error {
	if testCtx.Recognizer == nil {
		return errors.New("no recognizer configured")
	}
	if got := testCtx.Recognizer.Calls(); got != n {
		return fmt.Errorf("expected %d recognizer calls, got %d", n, got)
	}
	return nil
}

func (testCtx *TestContext) theRawResponseShouldNotContain(fragment string) error {
	if strings.Contains(string(testCtx.LastBody), fragment) {
		return fmt.Errorf("response %s contains %q", testCtx.LastBody, fragment)
	}
	return nil
}

func (testCtx *TestContext) requireResult() error {
	if testCtx.LastResponse == nil {
		return errors.New("no response received")
	}
	if testCtx.LastResponse.Result == nil {
		return fmt.Errorf("response has no result: %s", testCtx.LastBody)
	}
	return nil
}
